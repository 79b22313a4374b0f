package interpreter

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/emojilens/backend/internal/model/interpretation"
)

func placeholderRequest(message string) interpretation.Request {
	return interpretation.Request{
		Message:  message,
		Platform: interpretation.PlatformIMessage,
		Context:  interpretation.ContextFriend,
	}
}

func TestPlaceholderInterpretIsDeterministic(t *testing.T) {
	p := NewPlaceholder()
	req := placeholderRequest("sure, sounds great 🙃")

	first, err := p.Interpret(context.Background(), req)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	second, err := p.Interpret(context.Background(), req)
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	if first.Interpretation != second.Interpretation {
		t.Fatal("placeholder text differs between runs")
	}
	if first.Metrics != second.Metrics {
		t.Fatalf("placeholder metrics differ: %+v vs %+v", first.Metrics, second.Metrics)
	}
	if !first.Placeholder {
		t.Fatal("result not marked as placeholder")
	}
	if !strings.Contains(strings.ToLower(first.Interpretation), "placeholder") {
		t.Fatalf("text does not mention placeholder: %q", first.Interpretation)
	}
}

func TestPlaceholderResultCarriesExtractedEmojis(t *testing.T) {
	p := NewPlaceholder()
	result, err := p.Interpret(context.Background(), placeholderRequest("see you there 😊🎉"))
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if len(result.Emojis) != 2 || result.Emojis[0] != "😊" || result.Emojis[1] != "🎉" {
		t.Fatalf("emojis = %v, want [😊 🎉]", result.Emojis)
	}
	if result.ID == "" {
		t.Fatal("expected a generated result ID")
	}
}

func TestPlaceholderStreamReassemblesInterpretation(t *testing.T) {
	p := NewPlaceholder()
	req := placeholderRequest("fine. do whatever you want 🙄")

	stream, err := p.Stream(context.Background(), req)
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}
	defer stream.Close()

	var assembled strings.Builder
	var final *interpretation.Result
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv: %v", err)
		}
		assembled.WriteString(chunk.Text)
		if chunk.Final != nil {
			final = chunk.Final
		}
	}

	if final == nil {
		t.Fatal("stream ended without a final result")
	}
	if assembled.String() != final.Interpretation {
		t.Fatalf("chunks reassemble to %q, final text is %q", assembled.String(), final.Interpretation)
	}
	if len(final.RedFlags) == 0 {
		t.Fatal("expected red flags for a passive-aggressive message")
	}
}

func TestPlaceholderStreamRecvAfterEOF(t *testing.T) {
	p := NewPlaceholder()
	stream, err := p.Stream(context.Background(), placeholderRequest("hello 👋"))
	if err != nil {
		t.Fatalf("Stream: %v", err)
	}

	for {
		if _, err := stream.Recv(); err != nil {
			break
		}
	}
	if _, err := stream.Recv(); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}
