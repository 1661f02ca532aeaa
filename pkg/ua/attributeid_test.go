package ua

import (
	"errors"
	"testing"
)

func TestAttributeIDString(t *testing.T) {
	tests := []struct {
		id   AttributeID
		want string
	}{
		{AttributeIDNodeID, "NodeID"},
		{AttributeIDValue, "Value"},
		{AttributeIDDisplayName, "DisplayName"},
		{AttributeIDAccessLevelEx, "AccessLevelEx"},
		{AttributeID(0), "ATTRIBUTE(0)"},
		{AttributeID(28), "ATTRIBUTE(28)"},
	}

	for _, tt := range tests {
		if got := tt.id.String(); got != tt.want {
			t.Errorf("AttributeID(%d).String() = %q, want %q", uint32(tt.id), got, tt.want)
		}
	}
}

func TestParseAttributeID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  AttributeID
	}{
		{"canonical", "Value", AttributeIDValue},
		{"lowercase alias", "value", AttributeIDValue},
		{"uppercase", "VALUE", AttributeIDValue},
		{"canonical multiword", "DisplayName", AttributeIDDisplayName},
		{"lowercase multiword", "displayname", AttributeIDDisplayName},
		{"first", "NodeID", AttributeIDNodeID},
		{"last", "accesslevelex", AttributeIDAccessLevelEx},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAttributeID(tt.input)
			if err != nil {
				t.Fatalf("ParseAttributeID(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseAttributeID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if _, err := ParseAttributeID("NoSuchAttribute"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("ParseAttributeID unknown name error = %v, want ErrInvalidFormat", err)
	}
}

func TestAttributeIDAliases(t *testing.T) {
	// The legacy "Id" spellings must resolve to the same wire values.
	pairs := []struct {
		alias, canonical AttributeID
	}{
		{AttributeIdNodeId, AttributeIDNodeID},
		{AttributeIdValue, AttributeIDValue},
		{AttributeIdDisplayName, AttributeIDDisplayName},
		{AttributeIdAccessLevelEx, AttributeIDAccessLevelEx},
	}
	for _, p := range pairs {
		if p.alias != p.canonical {
			t.Errorf("alias %v != canonical %v", p.alias, p.canonical)
		}
	}
}

func TestAttributeIDValid(t *testing.T) {
	if AttributeID(0).Valid() {
		t.Error("AttributeID(0).Valid() = true")
	}
	if !AttributeIDNodeID.Valid() || !AttributeIDAccessLevelEx.Valid() {
		t.Error("range endpoints reported invalid")
	}
	if AttributeID(28).Valid() {
		t.Error("AttributeID(28).Valid() = true")
	}
}
