// ABOUTME: Tests for the per-phone session store defaults and transitions

package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lmv-credia/cobranza-gateway/internal/agents"
)

func TestGetDefaultsToInitial(t *testing.T) {
	s := NewStore()

	sess := s.Get("5512345678")
	assert.Equal(t, StateInitial, sess.State)
	assert.Nil(t, sess.Agent)
	assert.Equal(t, 0, s.Len())
}

func TestSetReplacesAgent(t *testing.T) {
	s := NewStore()
	s.SetWithAgent("5512345678", StateWaitingAgent, agents.Agent{Name: "Lic. Alfonso"})

	sess := s.Get("5512345678")
	assert.Equal(t, StateWaitingAgent, sess.State)
	assert.NotNil(t, sess.Agent)

	// Moving back to the menu drops the assignment.
	s.Set("5512345678", StateMenu)
	sess = s.Get("5512345678")
	assert.Equal(t, StateMenu, sess.State)
	assert.Nil(t, sess.Agent)
	assert.False(t, sess.LastUpdated.IsZero())
}

func TestAllReturnsEverySession(t *testing.T) {
	s := NewStore()
	s.Set("5512345678", StateMenu)
	s.Set("5598765432", StateExcuses)

	assert.Len(t, s.All(), 2)
}
