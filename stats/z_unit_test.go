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

package stats_test

import (
	"math"
	"testing"

	"github.com/zintix-labs/spinlab/spec"
	"github.com/zintix-labs/spinlab/stats"
)

// buildStatReport constructs a StatReport from a list of payouts at a fixed bet.
func buildStatReport(bet float64, payouts []float64) *stats.StatReport {
	L := stats.Buckets.Size()
	wc := make([]int, L)
	tc := make([]int, len(stats.TierLabels()))

	var totalWin, multSum, multSqSum float64
	for _, w := range payouts {
		m := w / bet
		wc[stats.Buckets.Index(m)]++
		totalWin += w
		multSum += m
		multSqSum += m * m
	}

	report := &stats.StatReport{
		Summary: &stats.SummaryReport{
			VariantName: "stattest",
			VID:         spec.VID(0),
			Bet:         bet,
			TotalBet:    bet * float64(len(payouts)),
			TotalWin:    totalWin,
			NoWinRounds: wc[0],
			Rounds:      len(payouts),
		},
		Mult: &stats.MultReport{
			WinMult:      multSum,
			WinMultSqSum: multSqSum,
		},
		Dist: &stats.DistReport{
			WinBucket:   stats.Buckets.WinBucketStr(),
			WinCollect:  wc,
			WinDist:     make([]float64, L),
			TierLabel:   stats.TierLabels(),
			TierCollect: tc,
			TierDist:    make([]float64, len(tc)),
		},
		Player: &stats.PlayerReport{},
	}
	report.Done()
	return report
}

func TestStatReportCoreMetrics(t *testing.T) {
	bet := 2.0
	rep := buildStatReport(bet, []float64{2, 4})

	wantRTP := 6.0 / 4.0
	if got := rep.Rtp(); math.Abs(got-wantRTP) > 1e-12 {
		t.Fatalf("RTP got %.12f want %.12f", got, wantRTP)
	}

	m0, m1 := 1.0, 2.0
	variance := ((m0*m0 + m1*m1) - (m0+m1)*(m0+m1)/2) / (2 - 1)
	wantStd := math.Sqrt(variance)
	if got := rep.Std(); math.Abs(got-wantStd) > 1e-12 {
		t.Fatalf("Std got %.12f want %.12f", got, wantStd)
	}

	wantCV := wantStd / wantRTP
	if got := rep.Cv(); math.Abs(got-wantCV) > 1e-12 {
		t.Fatalf("CV got %.12f want %.12f", got, wantCV)
	}

	ci := rep.Ci()
	if ci.Lo > wantRTP || ci.Hi < wantRTP {
		t.Fatalf("CI [%v,%v] must contain RTP %v", ci.Lo, ci.Hi, wantRTP)
	}
	if ci.Lo < 0 {
		t.Fatalf("CI lower bound must clamp at 0, got %v", ci.Lo)
	}

	totalRounds := 0
	for _, c := range rep.Dist.WinCollect {
		totalRounds += c
	}
	if totalRounds != rep.Summary.Rounds {
		t.Fatalf("distribution total %d != rounds %d", totalRounds, rep.Summary.Rounds)
	}

	before := rep.Summary.RTP
	rep.Done() // idempotent
	if rep.Summary.RTP != before {
		t.Fatal("RTP changed after second Done")
	}
}

func TestStatReportGuards(t *testing.T) {
	empty := buildStatReport(1, nil)
	if empty.Rtp() != 0 || empty.Std() != 0 || empty.Cv() != 0 {
		t.Fatalf("empty report must yield zero metrics: %+v", empty.Summary)
	}

	single := buildStatReport(1, []float64{5})
	if single.Std() != 0 {
		t.Fatal("single round has no std")
	}
	// Alive defaults to true when neither bust nor cashout
	if !single.Player.Alive {
		t.Fatal("player should be alive by default after Done")
	}
}

func TestWinBucketIndex(t *testing.T) {
	cases := []struct {
		mult float64
		idx  int
	}{
		{-1, 0},
		{0, 0},
		{0.5, 1},  // (0,1)
		{1, 2},    // [1,2)
		{1.99, 2},
		{2, 3},    // [2,5)
		{4.99, 3},
		{5, 4},    // [5,10)
		{10, 5},   // [10,20)
		{50, 7},   // [50,100)
		{100, 8},  // [100,300)
		{9999, 12},  // [2000,10000)
		{10000, 13}, // [10000,+inf)
		{1e9, 13},
	}
	for _, tc := range cases {
		if got := stats.Buckets.Index(tc.mult); got != tc.idx {
			t.Fatalf("mult %v: bucket got %d want %d", tc.mult, got, tc.idx)
		}
	}
	if stats.Buckets.Size() != len(stats.Buckets.WinBucketStr()) {
		t.Fatal("bucket size must match label count")
	}
}

func TestTierLabels(t *testing.T) {
	labels := stats.TierLabels()
	want := []string{"none", "small", "medium", "big", "jackpot"}
	if len(labels) != len(want) {
		t.Fatalf("label count got %d want %d", len(labels), len(want))
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("label %d got %q want %q", i, labels[i], want[i])
		}
	}
}

func TestEstimatorRtpAndSession(t *testing.T) {
	// Build 100 reports with RTP from 0.00 to 0.99
	reports := make([]*stats.StatReport, 0, 100)
	for i := 0; i < 100; i++ {
		reports = append(reports, buildStatReport(100, []float64{float64(i)}))
	}

	est := stats.EstimatorPlayerExp(reports)
	if math.Abs(est.RtpStat.ExpMedian.Hat-0.5) > 0.05 {
		t.Fatalf("median RTP expected ~0.5, got %.3f", est.RtpStat.ExpMedian.Hat)
	}
	if math.Abs(est.RtpStat.ExpPerc.ExpP90.Hat-0.9) > 0.05 {
		t.Fatalf("P90 RTP expected ~0.9, got %.3f", est.RtpStat.ExpPerc.ExpP90.Hat)
	}

	// Session outcome: 3 bust, 2 cashout, 5 alive
	sessionSamples := make([]*stats.StatReport, 10)
	for i := 0; i < 10; i++ {
		r := buildStatReport(100, []float64{0})
		switch {
		case i < 3:
			r.Player.Bust = true
			r.Player.Alive = false
		case i < 5:
			r.Player.Cashout = true
			r.Player.Alive = false
		default:
			r.Player.Alive = true
		}
		sessionSamples[i] = r
	}
	est2 := stats.EstimatorPlayerExp(sessionSamples)
	if est2.SessionStat.Bust.Hat != 0.3 {
		t.Fatalf("Bust rate got %.2f want 0.30", est2.SessionStat.Bust.Hat)
	}
	if est2.SessionStat.Cashout.Hat != 0.2 {
		t.Fatalf("Cashout rate got %.2f want 0.20", est2.SessionStat.Cashout.Hat)
	}
	if est2.SessionStat.Alive.Hat != 0.5 {
		t.Fatalf("Alive rate got %.2f want 0.50", est2.SessionStat.Alive.Hat)
	}
}
