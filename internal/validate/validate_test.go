package validate

import (
	"strings"
	"testing"
)

func validInput(message string) Input {
	return Input{Message: message, Platform: "imessage", Context: "friend"}
}

func TestValidateAcceptsEmojiMessage(t *testing.T) {
	req, errs := Validate(validInput("Hey there! 👋 how are you?"))
	if !errs.Valid() {
		t.Fatalf("unexpected field errors: %v", errs)
	}
	if req.Message != "Hey there! 👋 how are you?" {
		t.Fatalf("unexpected message: %q", req.Message)
	}
	if req.Platform != "imessage" || req.Context != "friend" {
		t.Fatalf("enums not carried: %+v", req)
	}
}

func TestValidateMessageTooShort(t *testing.T) {
	_, errs := Validate(validInput("hi 👋"))
	if errs.Valid() {
		t.Fatal("expected length error")
	}
	if !strings.Contains(errs["message"], "at least 10") {
		t.Fatalf("unexpected message error: %q", errs["message"])
	}
}

func TestValidateMessageTooLong(t *testing.T) {
	long := strings.Repeat("a", 1001) + "👋"
	_, errs := Validate(validInput(long))
	if errs.Valid() {
		t.Fatal("expected length error")
	}
	if !strings.Contains(errs["message"], "at most 1000") {
		t.Fatalf("unexpected message error: %q", errs["message"])
	}
}

func TestValidateEmojiWeighsAsUTF16Units(t *testing.T) {
	// 👋 is two UTF-16 code units; eight letters plus it reaches the minimum.
	if got := MessageLength("aaaaaaaa👋"); got != 10 {
		t.Fatalf("MessageLength = %d, want 10", got)
	}
	if _, errs := Validate(validInput("aaaaaaaa👋")); !errs.Valid() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestValidateEmojiRequired(t *testing.T) {
	_, errs := Validate(validInput("this message has no emoji at all"))
	if errs.Valid() {
		t.Fatal("expected emoji-required error")
	}
	if !strings.Contains(errs["message"], "emoji") {
		t.Fatalf("unexpected message error: %q", errs["message"])
	}
}

func TestValidateReportsAllViolationsTogether(t *testing.T) {
	_, errs := Validate(Input{Message: "short", Platform: "telepathy", Context: "nemesis"})
	if errs.Valid() {
		t.Fatal("expected field errors")
	}
	for _, field := range []string{"message", "platform", "context"} {
		if _, ok := errs[field]; !ok {
			t.Fatalf("missing error for field %q: %v", field, errs)
		}
	}
}

func TestValidateShortAndEmojilessBothReported(t *testing.T) {
	_, errs := Validate(validInput("short"))
	msg := errs["message"]
	if !strings.Contains(msg, "at least 10") || !strings.Contains(msg, "emoji") {
		t.Fatalf("expected both message violations, got %q", msg)
	}
}

func TestValidatePlatformCaseInsensitive(t *testing.T) {
	_, errs := Validate(Input{Message: "Hey there! 👋 how are you?", Platform: "WhatsApp", Context: "Friend"})
	if !errs.Valid() {
		t.Fatalf("unexpected errors: %v", errs)
	}
}

func TestExtractEmojisOrderAndDedup(t *testing.T) {
	got := ExtractEmojis("so 😂 funny 😂 right 👍😂?")
	want := []string{"😂", "👍"}
	if len(got) != len(want) {
		t.Fatalf("ExtractEmojis = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ExtractEmojis[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractEmojisZWJSequenceCountsOnce(t *testing.T) {
	family := "\U0001F468‍\U0001F469‍\U0001F467" // 👨‍👩‍👧
	got := ExtractEmojis("our crew " + family + " forever")
	if len(got) != 1 {
		t.Fatalf("expected a single grapheme cluster, got %v", got)
	}
	if got[0] != family {
		t.Fatalf("cluster split apart: %q", got[0])
	}
}

func TestExtractEmojisNoneFound(t *testing.T) {
	if got := ExtractEmojis("plain old text"); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestContainsEmojiSkinTone(t *testing.T) {
	if !ContainsEmoji("nice one 👍🏽 mate") {
		t.Fatal("skin-tone modified emoji not detected")
	}
}
