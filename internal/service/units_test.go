package service

import (
	"math"
	"testing"
)

func TestNormalizeServingConvertsKnownUnits(t *testing.T) {
	t.Parallel()
	size, unit, err := NormalizeServing(2, "oz")
	if err != nil {
		t.Fatalf("normalize oz: %v", err)
	}
	if unit != "g" || math.Abs(size-56.699) > 0.01 {
		t.Fatalf("expected ~56.7 g, got %.3f %s", size, unit)
	}

	size, unit, err = NormalizeServing(1, "cup")
	if err != nil {
		t.Fatalf("normalize cup: %v", err)
	}
	if unit != "ml" || math.Abs(size-236.59) > 0.01 {
		t.Fatalf("expected ~236.6 ml, got %.3f %s", size, unit)
	}
}

func TestNormalizeServingPassesThroughFreeformUnits(t *testing.T) {
	t.Parallel()
	size, unit, err := NormalizeServing(2, " Slice ")
	if err != nil {
		t.Fatalf("normalize slice: %v", err)
	}
	if size != 2 || unit != "Slice" {
		t.Fatalf("expected 2 Slice, got %v %q", size, unit)
	}
	if _, _, err := NormalizeServing(-1, "g"); err == nil {
		t.Fatalf("expected negative size error")
	}
}

func TestToGramsRequiresDensityForVolume(t *testing.T) {
	t.Parallel()
	if _, err := ToGrams(1, "cup", 0); err == nil {
		t.Fatalf("expected density requirement error")
	}
	out, err := ToGrams(1, "cup", 1.05)
	if err != nil {
		t.Fatalf("convert volume to mass with density: %v", err)
	}
	if math.Abs(out-248.4) > 0.5 {
		t.Fatalf("expected ~248.4 g, got %.4f", out)
	}
	if _, err := ToGrams(1, "handful", 0); err == nil {
		t.Fatalf("expected unsupported unit error")
	}
}
