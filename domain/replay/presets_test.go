package replay

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestNewPresets(t *testing.T) {
	tests := []struct {
		name    string
		values  []int
		want    []int
		wantErr string
	}{
		{name: "defaults", values: DefaultPresetSeconds, want: []int{15, 30, 60, 300, 900, 1800}},
		{name: "sorted on input", values: []int{60, 15, 30}, want: []int{15, 30, 60}},
		{name: "upper bound", values: []int{21600}, want: []int{21600}},
		{name: "empty", values: nil, wantErr: "at least one preset"},
		{name: "zero", values: []int{0, 30}, wantErr: "outside"},
		{name: "above max", values: []int{30, 21601}, wantErr: "outside"},
		{name: "duplicate", values: []int{30, 60, 30}, wantErr: "duplicate preset 30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewPresets(tt.values, MinBufferSeconds, MaxBufferSeconds)

			if tt.wantErr != "" {
				if err == nil {
					t.Errorf("NewPresets(%v) expected error, got nil", tt.values)
					return
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("NewPresets(%v) error = %v, want error containing %q", tt.values, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("NewPresets(%v) unexpected error: %v", tt.values, err)
			}
			if !reflect.DeepEqual(got.Values(), tt.want) {
				t.Errorf("NewPresets(%v).Values() = %v, want %v", tt.values, got.Values(), tt.want)
			}
		})
	}
}

func TestNewPresets_DoesNotAliasInput(t *testing.T) {
	in := []int{60, 30}
	p, err := NewPresets(in, 1, 100)
	if err != nil {
		t.Fatalf("NewPresets() unexpected error: %v", err)
	}

	in[0] = 99
	if got := p.Values(); !reflect.DeepEqual(got, []int{30, 60}) {
		t.Errorf("Values() = %v after mutating input, want [30 60]", got)
	}
}

func TestPresets_At(t *testing.T) {
	p := DefaultPresets()

	if got, err := p.At(1); err != nil || got != 15 {
		t.Errorf("At(1) = %d, %v; want 15, nil", got, err)
	}
	if got, err := p.At(p.Len()); err != nil || got != 1800 {
		t.Errorf("At(%d) = %d, %v; want 1800, nil", p.Len(), got, err)
	}

	for _, n := range []int{0, -1, p.Len() + 1} {
		if _, err := p.At(n); !errors.Is(err, ErrPresetNotFound) {
			t.Errorf("At(%d) error = %v, want ErrPresetNotFound", n, err)
		}
	}
}

func TestExceedsBufferError(t *testing.T) {
	err := &ExceedsBufferError{Requested: 900, BufferLength: 300}
	msg := err.Error()
	for _, want := range []string{"900", "300"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, want it to contain %q", msg, want)
		}
	}
}
