package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeStruct_TrimsAndEscapes(t *testing.T) {
	req := BindWalletRequest{
		DeviceFingerprint: "  fp-<script>alert(1)</script>  ",
	}
	SanitizeStruct(&req)

	assert.NotContains(t, req.DeviceFingerprint, "<script>")
	assert.Equal(t, req.DeviceFingerprint, "fp-&lt;script&gt;alert(1)&lt;/script&gt;")
}

func TestSanitizeStruct_PointerFields(t *testing.T) {
	venue := "  venue-1  "
	req := RegisterRequest{
		Username: " alice ",
		VenueID:  &venue,
	}
	SanitizeStruct(&req)

	assert.Equal(t, "alice", req.Username)
	assert.Equal(t, "venue-1", *req.VenueID)
}

func TestSanitizeStruct_NonStructNoop(t *testing.T) {
	s := "unchanged"
	SanitizeStruct(&s)
	assert.Equal(t, "unchanged", s)
}

func TestSafeIDPattern(t *testing.T) {
	assert.True(t, safeStringRe.MatchString("wallet_1.abc-DEF"))
	assert.False(t, safeStringRe.MatchString("has space"))
	assert.False(t, safeStringRe.MatchString("semi;colon"))
	assert.False(t, safeStringRe.MatchString(""))
}
