package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRow(t *testing.T) {
	links := []string{
		"https://www.instagram.com/p/abc/",
		"https://www.instagram.com/p/def/",
	}
	row := NewRow("alice", 2, 2024, time.February, links)

	assert.Equal(t, "alice", row.Handle)
	assert.Equal(t, 2, row.PostCount)
	assert.Equal(t, "2024", row.Year)
	assert.Equal(t, "February", row.Month)
	assert.Equal(t, "https://www.instagram.com/p/abc/ | https://www.instagram.com/p/def/", row.LinksCell())
}

func TestPlaceholderRows(t *testing.T) {
	nf := NotFoundRow("ghost")
	assert.Equal(t, 0, nf.PostCount)
	assert.Equal(t, "-", nf.Year)
	assert.Equal(t, "-", nf.Month)
	assert.Equal(t, "User not found", nf.LinksCell())

	er := ErrorRow("flaky")
	assert.Equal(t, 0, er.PostCount)
	assert.Equal(t, "-", er.Year)
	assert.Equal(t, "-", er.Month)
	assert.Equal(t, "Error occurred", er.LinksCell())
}

func TestLinksCellEmpty(t *testing.T) {
	row := NewRow("alice", 0, 2024, time.March, nil)
	assert.Equal(t, "", row.LinksCell())
}
