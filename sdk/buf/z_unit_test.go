// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package buf

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/spec"
)

func buildSetting() *spec.VariantSetting {
	vs := &spec.VariantSetting{
		VariantName: "buftest",
		VariantID:   spec.VID(11),
		SymbolsStr:  []string{"a", "b"},
		Weights:     []int{1, 1},
		ReelCount:   3,
		PayTable:    map[string]float64{"aaa": 10},
	}
	if err := vs.Init(); err != nil {
		panic(err)
	}
	return vs
}

func TestSpinResultResetKeepsCapacity(t *testing.T) {
	vs := buildSetting()
	sr := NewSpinResult(vs)
	sr.Bet = 2
	sr.Outcome = append(sr.Outcome, "a", "a", "a")
	sr.Payout = 20
	sr.IsWin = true
	sr.Tier = spec.TierMedium
	sr.Multiplier = 1.5
	sr.BonusTriggered = true
	sr.FreeSpins = 12
	sr.State.StartCoreSnap = append(sr.State.StartCoreSnap, 1, 2, 3)
	sr.State.AfterCoreSnap = append(sr.State.AfterCoreSnap, 4, 5)

	keep := cap(sr.Outcome)
	sr.Reset()

	if sr.Bet != 0 || sr.Payout != 0 || sr.IsWin || sr.BonusTriggered || sr.FreeSpins != 0 {
		t.Fatalf("reset left residue: %+v", sr)
	}
	if sr.Tier != spec.TierNone || sr.Multiplier != 1.0 {
		t.Fatalf("reset left tier/multiplier residue: %+v", sr)
	}
	if len(sr.Outcome) != 0 || cap(sr.Outcome) != keep {
		t.Fatalf("reset must keep outcome capacity: len=%d cap=%d", len(sr.Outcome), cap(sr.Outcome))
	}
	if len(sr.State.StartCoreSnap) != 0 || len(sr.State.AfterCoreSnap) != 0 {
		t.Fatal("reset must clear snapshots")
	}
	// identity fields survive reset
	if sr.VariantName != "buftest" || sr.VariantID != spec.VID(11) {
		t.Fatalf("reset must keep identity: %s %d", sr.VariantName, sr.VariantID)
	}
}

func TestSpinResultCloneIsDeep(t *testing.T) {
	vs := buildSetting()
	sr := NewSpinResult(vs)
	sr.Outcome = append(sr.Outcome, "a", "b", "a")
	sr.State.StartCoreSnap = []byte{1, 2}
	sr.Payout = 7

	c := sr.Clone()
	sr.Outcome[0] = "b"
	sr.State.StartCoreSnap[0] = 9
	sr.Payout = 0

	if c.Outcome[0] != "a" {
		t.Fatal("clone shares outcome memory")
	}
	if c.State.StartCoreSnap[0] != 1 {
		t.Fatal("clone shares snapshot memory")
	}
	if c.Payout != 7 {
		t.Fatal("clone lost scalar fields")
	}
}

func TestDecodeSpinRequestGet(t *testing.T) {
	r := httptest.NewRequest("GET", "/v1/spin?uid=u1&variant=classic&vid=101&bet=2.5", nil)
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if req.UID != "u1" || req.Variant != "classic" || req.VID != spec.VID(101) || req.Bet != 2.5 {
		t.Fatalf("decoded mismatch: %+v", req)
	}

	// missing params are zero values, validation is the caller's job
	r = httptest.NewRequest("GET", "/v1/spin", nil)
	req, err = DecodeSpinRequest(r)
	if err != nil || req.VID != 0 || req.Bet != 0 {
		t.Fatalf("empty query should decode to zero values: %+v err=%v", req, err)
	}

	// malformed numbers are warn-level errors
	r = httptest.NewRequest("GET", "/v1/spin?vid=abc", nil)
	if _, err = DecodeSpinRequest(r); err == nil {
		t.Fatal("expected error for bad vid")
	}
	r = httptest.NewRequest("GET", "/v1/spin?bet=xx", nil)
	_, err = DecodeSpinRequest(r)
	if e, ok := errs.AsErr(err); !ok || e.ErrLv != errs.Warn {
		t.Fatalf("expected warn for bad bet, got %v", err)
	}
}

func TestDecodeSpinRequestPost(t *testing.T) {
	body := `{"uid":"u2","variant":"fruity","vid":201,"bet":1}`
	r := httptest.NewRequest("POST", "/v1/spin", strings.NewReader(body))
	req, err := DecodeSpinRequest(r)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if req.UID != "u2" || req.VID != spec.VID(201) || req.Bet != 1 {
		t.Fatalf("decoded mismatch: %+v", req)
	}

	// unknown fields rejected
	r = httptest.NewRequest("POST", "/v1/spin", strings.NewReader(`{"vid":1,"hack":true}`))
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatal("expected error for unknown field")
	}

	// broken json rejected
	r = httptest.NewRequest("POST", "/v1/spin", strings.NewReader(`{`))
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatal("expected error for broken json")
	}
}

func TestDecodeSpinRequestGuards(t *testing.T) {
	if _, err := DecodeSpinRequest(nil); err == nil {
		t.Fatal("nil request must be rejected")
	}
	r := httptest.NewRequest("DELETE", "/v1/spin", nil)
	if _, err := DecodeSpinRequest(r); err == nil {
		t.Fatal("unsupported method must be rejected")
	}
}
