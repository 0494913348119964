package admin

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/argon2"
)

// encodeArgon2id собирает хеш в том же формате, что scripts/generate_hash.go.
func encodeArgon2id(password string) string {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}

	var (
		memory      uint32 = 65536
		iterations  uint32 = 3
		parallelism uint8  = 2
	)
	hash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, 32)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash))
}

func TestVerifyArgon2id(t *testing.T) {
	encoded := encodeArgon2id("correct horse battery staple")

	assert.True(t, verifyArgon2id("correct horse battery staple", encoded))
	assert.False(t, verifyArgon2id("wrong password", encoded))
	assert.False(t, verifyArgon2id("", encoded))
}

func TestVerifyArgon2id_MalformedHash(t *testing.T) {
	assert.False(t, verifyArgon2id("pass", ""))
	assert.False(t, verifyArgon2id("pass", "not-a-hash"))
	assert.False(t, verifyArgon2id("pass", "$argon2id$v=19$m=abc$salt$hash"))
	assert.False(t, verifyArgon2id("pass", "$argon2id$v=19$m=65536,t=3,p=2$!!badsalt!!$aGFzaA"))
}

func TestGenerateSecureToken(t *testing.T) {
	a := generateSecureToken()
	b := generateSecureToken()

	require.NotEmpty(t, a)
	assert.NotEqual(t, a, b, "токены должны быть уникальными")
}

func TestStateMachine(t *testing.T) {
	svc := NewService(nil, nil)

	assert.Nil(t, svc.GetState(100))

	svc.SetState(100, StateAwaitingPassword, nil)
	state := svc.GetState(100)
	require.NotNil(t, state)
	assert.Equal(t, StateAwaitingPassword, state.State)

	// Состояния изолированы по пользователям
	assert.Nil(t, svc.GetState(200))

	svc.ClearState(100)
	assert.Nil(t, svc.GetState(100))
}

func TestStateMachine_CarriesData(t *testing.T) {
	svc := NewService(nil, nil)

	svc.SetState(100, StateGiveRigaInput, "payload")
	state := svc.GetState(100)
	require.NotNil(t, state)
	assert.Equal(t, "payload", state.Data)
}
