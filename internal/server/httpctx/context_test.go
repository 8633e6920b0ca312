package httpctx

import (
	"context"
	"testing"
)

func TestWithIdentityRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "admin", "sess-1")

	if got, ok := GetUserID(ctx); !ok || got != "user-1" {
		t.Fatalf("GetUserID = %q, %v", got, ok)
	}
	if got, ok := GetRole(ctx); !ok || got != "admin" {
		t.Fatalf("GetRole = %q, %v", got, ok)
	}
	if got, ok := GetSessionID(ctx); !ok || got != "sess-1" {
		t.Fatalf("GetSessionID = %q, %v", got, ok)
	}
}

func TestGettersOnEmptyContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetUserID(ctx); ok {
		t.Fatal("GetUserID should report absent on empty context")
	}
	if _, ok := GetRole(ctx); ok {
		t.Fatal("GetRole should report absent on empty context")
	}
	if _, ok := GetSessionID(ctx); ok {
		t.Fatal("GetSessionID should report absent on empty context")
	}
}

func TestEmptyValuesReportAbsent(t *testing.T) {
	ctx := WithIdentity(context.Background(), "", "", "")
	if _, ok := GetUserID(ctx); ok {
		t.Fatal("empty user id should report absent")
	}
}
