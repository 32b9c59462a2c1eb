package tfidf

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
)

var corpus = []string{
	"refund policy customers may request a refund within thirty days",
	"orders can be cancelled before they ship ask for the order number",
	"escalate unresolved issues to a support ticket with the order number",
}

func fitted(t *testing.T) *Vectorizer {
	t.Helper()
	v := New(0)
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	return v
}

func TestFitRejectsRefit(t *testing.T) {
	v := fitted(t)
	if err := v.Fit(corpus); err == nil {
		t.Fatal("expected error on second Fit")
	}
}

func TestFitRejectsEmptyCorpus(t *testing.T) {
	if err := New(0).Fit(nil); err == nil {
		t.Fatal("expected error for empty corpus")
	}
}

func TestTransformIsL2Normalized(t *testing.T) {
	v := fitted(t)
	vec := v.Transform("refund request for my order")

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	if math.Abs(norm-1.0) > 1e-9 {
		t.Errorf("expected unit norm, got %f", math.Sqrt(norm))
	}
}

func TestTransformUnknownTermsDropped(t *testing.T) {
	v := fitted(t)
	vec := v.Transform("zeppelin quasar xylophone")

	for i, x := range vec {
		if x != 0 {
			t.Fatalf("expected zero vector for unknown terms, got %f at %d", x, i)
		}
	}
	if len(vec) != v.Dimension() {
		t.Errorf("expected dimension %d, got %d", v.Dimension(), len(vec))
	}
}

func TestTransformStopwordsExcluded(t *testing.T) {
	v := fitted(t)
	vec := v.Transform("the a for with they")
	for _, x := range vec {
		if x != 0 {
			t.Fatal("stopwords should not contribute to the vector")
		}
	}
}

func TestTransformDeterministic(t *testing.T) {
	v := fitted(t)
	a := v.Transform("cancel my order number")
	b := v.Transform("cancel my order number")
	if !reflect.DeepEqual(a, b) {
		t.Fatal("Transform is not deterministic")
	}
}

func TestMaxFeaturesCapsVocabulary(t *testing.T) {
	v := New(5)
	if err := v.Fit(corpus); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	if v.Dimension() != 5 {
		t.Errorf("expected dimension 5, got %d", v.Dimension())
	}
}

func TestSmoothedIDF(t *testing.T) {
	v := New(0)
	docs := []string{"apple banana", "apple cherry"}
	if err := v.Fit(docs); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// "apple" appears in both docs, "banana" in one.
	idx := func(term string) int {
		for i, tm := range v.terms {
			if tm == term {
				return i
			}
		}
		t.Fatalf("term %q not in vocabulary", term)
		return -1
	}

	wantApple := math.Log(3.0/3.0) + 1.0
	wantBanana := math.Log(3.0/2.0) + 1.0
	if got := v.idf[idx("apple")]; math.Abs(got-wantApple) > 1e-12 {
		t.Errorf("apple idf: got %f, want %f", got, wantApple)
	}
	if got := v.idf[idx("banana")]; math.Abs(got-wantBanana) > 1e-12 {
		t.Errorf("banana idf: got %f, want %f", got, wantBanana)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	v := fitted(t)
	query := "please cancel order and issue a refund"
	before := v.Transform(query)

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	restored := New(0)
	if err := json.Unmarshal(data, restored); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !restored.Fitted() {
		t.Fatal("restored vectorizer should be fitted")
	}
	if restored.Dimension() != v.Dimension() {
		t.Fatalf("dimension mismatch: %d vs %d", restored.Dimension(), v.Dimension())
	}

	after := restored.Transform(query)
	if !reflect.DeepEqual(before, after) {
		t.Fatal("restored vectorizer produces different vectors")
	}
}

func TestUnmarshalCorruptState(t *testing.T) {
	bad := `{"max_features": 10, "terms": ["a", "b"], "idf": [1.0]}`
	v := New(0)
	if err := json.Unmarshal([]byte(bad), v); err == nil {
		t.Fatal("expected error for terms/idf length mismatch")
	}
}
