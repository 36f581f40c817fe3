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

package dto

import (
	"encoding/json"
	"testing"

	"github.com/zintix-labs/spinlab/corefmt"
	"github.com/zintix-labs/spinlab/errs"
	"github.com/zintix-labs/spinlab/sdk/buf"
	"github.com/zintix-labs/spinlab/spec"
)

func buildResult() *buf.SpinResult {
	return &buf.SpinResult{
		VariantName:    "dtotest",
		VariantID:      spec.VID(77),
		Bet:            2,
		Outcome:        []spec.Symbol{"seven", "seven", "seven"},
		Payout:         300,
		IsWin:          true,
		Tier:           spec.TierJackpot,
		Multiplier:     1.5,
		BonusTriggered: false,
		FreeSpins:      0,
		State: buf.SpinState{
			StartCoreSnap: []byte{1, 2, 3},
			AfterCoreSnap: []byte{4, 5, 6},
		},
	}
}

func TestNewSpinResultDTO(t *testing.T) {
	sr := buildResult()
	d, err := NewSpinResultDTO(sr)
	if err != nil {
		t.Fatalf("dto build failed: %v", err)
	}

	if d.Variant != "dtotest" || d.VID != spec.VID(77) || d.Bet != 2 {
		t.Fatalf("identity mismatch: %+v", d)
	}
	if d.Tier != "jackpot" || d.Payout != 300 || d.Multiplier != 1.5 {
		t.Fatalf("payout fields mismatch: %+v", d)
	}
	if len(d.Outcome) != 3 || d.Outcome[0] != "seven" {
		t.Fatalf("outcome mismatch: %v", d.Outcome)
	}

	// snapshots are base64url round-trippable
	start, err := corefmt.DecodeBase64URL(d.State.StartCoreSnapB64U)
	if err != nil || len(start) != 3 || start[0] != 1 {
		t.Fatalf("start snapshot mismatch: %v err=%v", start, err)
	}
	after, err := corefmt.DecodeBase64URL(d.State.AfterCoreSnapB64U)
	if err != nil || len(after) != 3 || after[2] != 6 {
		t.Fatalf("after snapshot mismatch: %v err=%v", after, err)
	}
}

// TestDTODoesNotShareMemory: the DTO must survive the source buffer being reset.
func TestDTODoesNotShareMemory(t *testing.T) {
	sr := buildResult()
	d, err := NewSpinResultDTO(sr)
	if err != nil {
		t.Fatalf("dto build failed: %v", err)
	}

	sr.Reset()
	sr.Outcome = append(sr.Outcome, "cherry", "cherry", "cherry")

	if d.Outcome[0] != "seven" {
		t.Fatal("dto shares outcome memory with the reusable buffer")
	}
}

func TestNewSpinResultDTONil(t *testing.T) {
	_, err := NewSpinResultDTO(nil)
	e, ok := errs.AsErr(err)
	if !ok || e.ErrLv != errs.Warn {
		t.Fatalf("nil input: expected warn, got %v", err)
	}
}

func TestSpinResultDTOJSONShape(t *testing.T) {
	sr := buildResult()
	d, _ := NewSpinResultDTO(sr)
	raw, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, key := range []string{"variant", "vid", "bet", "outcome", "payout", "is_win", "tier", "multiplier", "bonus_triggered", "free_spins", "spin_state"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing json key %q in %s", key, raw)
		}
	}
}
