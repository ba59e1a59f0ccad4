package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpload_OwnedBy(t *testing.T) {
	owner := "u1"
	u := &Upload{ID: "1", CreatedBy: &owner}

	assert.True(t, u.OwnedBy("u1"))
	assert.False(t, u.OwnedBy("u2"))

	anon := &Upload{ID: "2"}
	assert.False(t, anon.OwnedBy(""))
}

func TestUpload_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"zero never expires", time.Time{}, false},
		{"future", now.Add(time.Minute), false},
		{"exactly now", now, true},
		{"past", now.Add(-time.Minute), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &Upload{ExpiresAt: tt.expires}
			assert.Equal(t, tt.want, u.Expired(now))
		})
	}
}

func TestOwnedBy_Scope(t *testing.T) {
	owner := "u1"
	assert.Equal(t, Scope{Owned: true, Owner: &owner}, OwnedBy(&owner))
	assert.Equal(t, Scope{Owned: true}, OwnedBy(nil))
	assert.False(t, Scope{}.Owned)
}
