package fixcodec

import "testing"

func TestEncodeDecodeRoundTrip(t *testing.T) {
	msg := NewBuilder("FIX.4.4").
		Set(35, "A").
		Set(49, "SENDER").
		Set(56, "TARGET").
		SetInt(34, 1).
		Build()

	decoded, err := Decode(msg)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if v, ok := decoded.String(35); !ok || v != "A" {
		t.Fatalf("tag 35 = %q, %v", v, ok)
	}
	if v, ok := decoded.Int(34); !ok || v != 1 {
		t.Fatalf("tag 34 = %d, %v", v, ok)
	}
	if err := Verify(msg); err != nil {
		t.Fatalf("Verify: %v", err)
	}
}

func TestVerifyDetectsBadChecksum(t *testing.T) {
	msg := NewBuilder("FIX.4.4").Set(35, "0").Build()
	corrupted := append([]byte{}, msg...)
	// flip the checksum's last digit
	for i := len(corrupted) - 2; i >= 0; i-- {
		if corrupted[i] >= '0' && corrupted[i] <= '9' {
			if corrupted[i] == '9' {
				corrupted[i] = '0'
			} else {
				corrupted[i]++
			}
			break
		}
	}
	if err := Verify(corrupted); err == nil {
		t.Fatal("expected Verify to detect corrupted checksum")
	}
}

func TestDecodeAcceptsPipeDelimiter(t *testing.T) {
	raw := []byte("8=FIX.4.4|9=5|35=0|10=000|")
	m, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v, ok := m.String(35); !ok || v != "0" {
		t.Fatalf("tag 35 = %q, %v", v, ok)
	}
}

func TestDecimalParsing(t *testing.T) {
	raw := []byte("270=50000.25\x01271=4\x01")
	m, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	f, ok := m.Float64(270)
	if !ok {
		t.Fatal("expected tag 270 decimal")
	}
	if f != 50000.25 {
		t.Fatalf("got %v", f)
	}
}

func TestIgnoresNonDigitTagSilently(t *testing.T) {
	raw := []byte("35=A\x01garbage\x0134=2\x01")
	m, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if v, ok := m.Int(34); !ok || v != 2 {
		t.Fatalf("tag 34 = %d, %v", v, ok)
	}
}
