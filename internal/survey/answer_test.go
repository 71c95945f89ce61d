package survey

import (
	"encoding/json"
	"testing"
)

func TestAnswersEncodeAsBareValues(t *testing.T) {
	data, err := json.Marshal([]Answer{ScaleAnswer(3), TextAnswer("good")})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `[3,"good"]` {
		t.Errorf("Marshal = %s, expected [3,\"good\"]", data)
	}

	var back []Answer
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if len(back) != 2 || back[0] != ScaleAnswer(3) || back[1] != TextAnswer("good") {
		t.Errorf("Unmarshal = %v", back)
	}

	var bad Answer
	if err := json.Unmarshal([]byte(`true`), &bad); err == nil {
		t.Error("Unmarshal should reject booleans")
	}
	if err := json.Unmarshal([]byte(`3.7`), &bad); err == nil {
		t.Errorf("Unmarshal should reject fractions, got %v", bad)
	}
	if err := json.Unmarshal([]byte(`4.0`), &bad); err != nil || bad != ScaleAnswer(4) {
		t.Errorf("Unmarshal(4.0) = %v, %v", bad, err)
	}
}

func TestQuestionSpan(t *testing.T) {
	if got := Scale("s", "q", 1, 5).Span(); got != 5 {
		t.Errorf("Span() = %d, expected 5", got)
	}
	if got := OpenText("s", "q").Span(); got != 0 {
		t.Errorf("Span() of text question = %d, expected 0", got)
	}
}
