package telegram

import "testing"

func TestPickBotMatchesAuthor(t *testing.T) {
	bots := []bot{
		{userID: 100},
		{userID: 0},
		{userID: 200},
	}

	if got := pickBot(bots, 200); got.userID != 200 {
		t.Errorf("pickBot(200).userID = %d, want 200", got.userID)
	}
}

func TestPickBotFallsBackToDefault(t *testing.T) {
	bots := []bot{
		{userID: 100},
		{userID: 0},
	}

	if got := pickBot(bots, 999); got.userID != 0 {
		t.Errorf("pickBot(unmatched).userID = %d, want 0 (fallback bot)", got.userID)
	}
}

func TestPickBotWithoutDefaultUsesFirst(t *testing.T) {
	bots := []bot{
		{userID: 100},
		{userID: 200},
	}

	if got := pickBot(bots, 999); got.userID != 100 {
		t.Errorf("pickBot(unmatched).userID = %d, want first bot", got.userID)
	}
}
