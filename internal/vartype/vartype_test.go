// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package vartype

import "testing"

func TestLookup(t *testing.T) {
	tags := map[string]string{"addr:street": "Hauptstraße", "addr:postcode": ""}
	t.Run("present key is set", func(t *testing.T) {
		v := Lookup(tags, "addr:street")
		if !v.IsSet() {
			t.Fatal("expected variable to be set")
		}
		if v.Value() != "Hauptstraße" {
			t.Errorf("expected value to be %q, got %q", "Hauptstraße", v.Value())
		}
	})
	t.Run("present but empty key is set", func(t *testing.T) {
		v := Lookup(tags, "addr:postcode")
		if !v.IsSet() {
			t.Fatal("expected variable to be set")
		}
		if v.Value() != "" {
			t.Errorf("expected empty value, got %q", v.Value())
		}
	})
	t.Run("missing key is unset", func(t *testing.T) {
		v := Lookup(tags, "addr:housenumber")
		if v.IsSet() {
			t.Fatal("expected variable to be unset")
		}
		if v.Value() != "" {
			t.Errorf("expected zero value, got %q", v.Value())
		}
	})
	t.Run("lookup on nil map is unset", func(t *testing.T) {
		var nilTags map[string]string
		if Lookup(nilTags, "addr:street").IsSet() {
			t.Fatal("expected variable to be unset")
		}
	})
}

func TestNewVariable(t *testing.T) {
	var zero VarString
	if zero.IsSet() {
		t.Fatal("expected zero variable to be unset")
	}
	v := NewVariable("12a")
	if !v.IsSet() || v.Value() != "12a" {
		t.Errorf("expected variable to be set to %q, got %q (set: %t)", "12a", v.Value(), v.IsSet())
	}
}
