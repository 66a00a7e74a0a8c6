package analytics

import (
	"reflect"
	"testing"
)

func TestWordFrequency(t *testing.T) {
	got := WordFrequency("The Gopher, the gopher! And the (burrow).")
	want := map[string]int{"gopher": 2, "burrow": 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("WordFrequency() = %v, want %v", got, want)
	}
}

func TestKeywords(t *testing.T) {
	text := "tunnels tunnels tunnels soil soil gophers gophers 2024 2024 2024 ok ok ok ok"
	got := Keywords(text, 3)
	want := []string{"tunnels", "gophers", "soil"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Keywords() = %v, want %v", got, want)
	}

	if got := Keywords("", 5); len(got) != 0 {
		t.Errorf("Keywords(empty) = %v", got)
	}
}

func TestIsStopword(t *testing.T) {
	for _, w := range []string{"The", "click", "won't"} {
		if !IsStopword(w) {
			t.Errorf("IsStopword(%q) = false", w)
		}
	}
	if IsStopword("gopher") {
		t.Error("IsStopword(gopher) = true")
	}
}

func TestDetectLanguage(t *testing.T) {
	code, conf, ok := DetectLanguage("The quick brown fox jumps over the lazy dog while the farmer watches from the porch.")
	if !ok || code != "en" {
		t.Errorf("DetectLanguage(english) = %q, %v, %v", code, conf, ok)
	}
	if conf <= 0 || conf > 1 {
		t.Errorf("confidence = %v, out of range", conf)
	}

	code, _, ok = DetectLanguage("Le renard brun rapide saute par-dessus le chien paresseux pendant que le fermier regarde.")
	if !ok || code != "fr" {
		t.Errorf("DetectLanguage(french) = %q, %v", code, ok)
	}

	if _, _, ok := DetectLanguage("hi"); ok {
		t.Error("DetectLanguage(short) should not be ok")
	}
}
