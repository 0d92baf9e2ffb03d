package middleware

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSecret = []byte("test-secret")

func TestSignAndParseToken(t *testing.T) {
	id := primitive.NewObjectID()

	tokenString, err := SignToken(testSecret, id, "student", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	claims, err := ParseToken(testSecret, tokenString)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != id.Hex() {
		t.Errorf("subject = %q, want %q", claims.Subject, id.Hex())
	}
	if claims.Role != "student" {
		t.Errorf("role = %q, want %q", claims.Role, "student")
	}
}

func TestParseTokenExpired(t *testing.T) {
	id := primitive.NewObjectID()

	tokenString, err := SignToken(testSecret, id, "admin", -time.Minute)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	_, err = ParseToken(testSecret, tokenString)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("ParseToken error = %v, want ErrTokenExpired", err)
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	id := primitive.NewObjectID()

	tokenString, err := SignToken(testSecret, id, "organizer", time.Hour)
	if err != nil {
		t.Fatalf("SignToken: %v", err)
	}

	if _, err := ParseToken([]byte("another-secret"), tokenString); err == nil {
		t.Error("ParseToken accepted a token signed with a different secret")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken(testSecret, "not.a.token"); err == nil {
		t.Error("ParseToken accepted garbage input")
	}
}
