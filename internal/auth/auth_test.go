package auth

import "testing"

func TestIdentityKeyDistinguishesUsersFromGuests(t *testing.T) {
	u := Identity{UserID: "42"}
	g := Identity{GuestID: "42"}
	if u.Key() == g.Key() {
		t.Fatalf("user and guest with the same raw id must not collide: %q", u.Key())
	}
}

func TestNewGuestIsUnique(t *testing.T) {
	a, b := NewGuest("ann"), NewGuest("ann")
	if a.GuestID == b.GuestID {
		t.Fatalf("two guests share an id")
	}
	if a.UserID != "" {
		t.Fatalf("guest must not carry a user id")
	}
}

func TestKeyHashRoundTrip(t *testing.T) {
	hash, err := HashKey("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckKey(hash, "s3cret") {
		t.Fatalf("correct key rejected")
	}
	if CheckKey(hash, "wrong") {
		t.Fatalf("wrong key accepted")
	}
}
