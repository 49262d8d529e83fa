// Package instagram provides a client for Instagram's private API.
//
// This package includes:
//   - A configurable HTTP client with app headers, session cookies, a
//     rate-limit gate, and transport retry
//   - Serializable Settings (device identity + cookies) so a login can be
//     cached and restored between runs
//   - Login, relogin, and challenge-resolution flows with failures
//     classified into the typed kinds of pkg/errors
//   - Username → user id resolution and paginated feed fetching
//
// Example usage:
//
//	client := instagram.NewClient(cfg, log)
//	if err := client.Login(ctx, username, password); err != nil {
//	    if e, ok := errs.AsError(err); ok {
//	        switch e.Kind {
//	        case errs.KindBadPassword:
//	            // Handle bad credentials
//	        case errs.KindChallengeRequired:
//	            // Resolve via client.ResolveChallenge(ctx, e.ChallengePath, solver)
//	        }
//	    }
//	}
//
//	userID, err := client.UserIDFromUsername(ctx, "somebody")
//	medias, err := client.UserMedias(ctx, userID, 1000)
package instagram
