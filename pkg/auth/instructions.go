package auth

import (
	"fmt"
	"strings"
)

// ShowLoginGuide displays step-by-step instructions for signing in
func ShowLoginGuide() {
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("📚 INSTAGRAM LOGIN GUIDE")
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()

	fmt.Println("This tool logs in to Instagram with your username and password and")
	fmt.Println("caches the resulting session locally so later runs skip the login.")
	fmt.Println()

	fmt.Println("🔑 STEP 1: Sign in")
	fmt.Println("   - Run: igmonthly auth login")
	fmt.Println("   - Enter your username and password when prompted")
	fmt.Println("   - The password is read without echo and stored encrypted")
	fmt.Println()

	fmt.Println("🛡️  STEP 2: Handle a checkpoint challenge (if asked)")
	fmt.Println("   - Instagram sometimes asks to verify it is really you")
	fmt.Println("   - Check your email or SMS for a 6-digit security code")
	fmt.Println("   - Type the code at the prompt and press Enter")
	fmt.Println()

	fmt.Println("🧊 STEP 3: If the account gets frozen")
	fmt.Println("   - Repeated failures put the account on a local cooldown")
	fmt.Println("   - Run: igmonthly auth status   to see when it lifts")
	fmt.Println("   - Run: igmonthly auth unfreeze to clear it manually")
	fmt.Println("   - Log in to instagram.com in a browser first to confirm the")
	fmt.Println("     account itself is not blocked")
	fmt.Println()

	fmt.Println("💡 TIPS:")
	fmt.Println("   • Sessions are reused for 24 hours before a fresh login")
	fmt.Println("   • Use a secondary account to avoid issues with your main account")
	fmt.Println("   • Set IGMONTHLY_USERNAME and IGMONTHLY_PASSWORD for non-interactive runs")
	fmt.Println()

	fmt.Println("⚠️  SECURITY WARNING:")
	fmt.Println("   • Your password gives FULL access to your Instagram account")
	fmt.Println("   • NEVER share it or commit it to a repository")
	fmt.Println("   • This tool stores it in the system keychain or an encrypted file")
	fmt.Println()
	fmt.Println(strings.Repeat("=", 80))
	fmt.Println()
}

// ShowQuickLoginGuide shows a condensed version for experienced users
func ShowQuickLoginGuide() {
	fmt.Println("\n🔑 Quick Guide: igmonthly auth login → enter username and password → done")
	fmt.Println("   Challenged? Check email/SMS for the 6-digit code and type it in")
	fmt.Println("   Type 'help' for detailed instructions")
}
