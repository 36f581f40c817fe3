package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/spinlab/spec"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// StatReport 變體統計報告
type StatReport struct {
	Summary *SummaryReport `json:"Summary"`
	Mult    *MultReport    `json:"Mult"`
	Dist    *DistReport    `json:"Dist"`
	Player  *PlayerReport  `json:"Player,omitzero"`
	isDone  bool
}

type SummaryReport struct {
	VariantName string   `json:"VariantName"`
	VID         spec.VID `json:"VID"`
	Bet         float64  `json:"Bet"`
	TotalBet    float64  `json:"TotalBet"`
	TotalWin    float64  `json:"TotalWin"`
	RTP         float64  `json:"RTP"`
	RtpCI       CI       `json:"RtpCI"`
	Std         float64  `json:"Std"`
	Cv          float64  `json:"Cv"`
	Trigger     int      `json:"Trigger"`     // bonus 觸發局數
	TriggerRate float64  `json:"TriggerRate"` // bonus 觸發率
	FreeSpins   int      `json:"FreeSpins"`   // 授予的免費旋轉總數
	NoWinRounds int      `json:"NoWinRounds"`
	HitRate     float64  `json:"HitRate"`
	Rounds      int      `json:"Rounds"`
}

// MultReport 贏倍統計
//
// 贏倍 = 派彩 / 押注。紀錄階段累積總和與平方和，Done() 再算標準差。
type MultReport struct {
	WinMult      float64 `json:"WinMult"`
	WinMultSqSum float64 `json:"WinMultSqSum"` // 平方和
}

// DistReport 贏倍區間落點統計與贏分級距統計
type DistReport struct {
	WinBucket   []string  `json:"WinBucket"`
	WinCollect  []int     `json:"WinCollect"`
	WinDist     []float64 `json:"WinDist"`
	TierLabel   []string  `json:"TierLabel"`
	TierCollect []int     `json:"TierCollect"`
	TierDist    []float64 `json:"TierDist"`
}

// PlayerReport 玩家統計
//
// 需使用PlayerRecord 才會統計
type PlayerReport struct {
	InitBalance float64 `json:"InitBalance"`
	Balance     float64 `json:"Balance"`
	MaxBalance  float64 `json:"MaxBalance"`
	MinBalance  float64 `json:"MinBalance"`
	Bust        bool    `json:"Bust"`
	Cashout     bool    `json:"Cashout"`
	Alive       bool    `json:"Alive"`
}

// TierLabels 回傳贏分級距的顯示順序（index 對齊 spec.WinTier）。
func TierLabels() []string {
	labels := make([]string, int(spec.TierJackpot)+1)
	for i := range labels {
		labels[i] = spec.WinTier(i).String()
	}
	return labels
}

// ============================================================
// ** 公開方法 **
// ============================================================

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 紀錄階段只做加總，統計結果（RTP/CI/Std/Cv）在 Done 一次性計算。
func (s *StatReport) Done() {
	if s.isDone {
		return
	}
	// Summary
	s.Summary.RTP = s.Rtp()
	s.Summary.RtpCI = s.Ci()
	s.Summary.Std = s.Std()
	s.Summary.Cv = s.Cv()

	// Player
	s.Player.Alive = !(s.Player.Bust || s.Player.Cashout)

	s.isDone = true
}

// Rtp 回傳整體 RTP（總贏分 / 總押注）
func (s *StatReport) Rtp() float64 {
	if s.Summary.Rounds == 0 || s.Summary.TotalBet == 0 {
		return 0
	}
	return (s.Summary.TotalWin / s.Summary.TotalBet)
}

// Std 回傳單局贏倍的標準差
func (s *StatReport) Std() float64 {
	if s.Summary.Rounds < 2 || s.Summary.Bet == 0 {
		return 0
	}
	rounds := float64(s.Summary.Rounds)

	winMultPow := s.Mult.WinMult * s.Mult.WinMult
	variance := (s.Mult.WinMultSqSum - winMultPow/rounds) / (rounds - 1)

	if variance < 0 {
		variance = 0
	}

	std := math.Sqrt(variance)
	return std
}

// Cv 回傳單局贏倍的變異係數
func (s *StatReport) Cv() float64 {
	rtp := s.Rtp()
	std := s.Std()
	if rtp <= 0 {
		return 0
	}
	return (std / rtp)
}

// Ci 回傳(95% Rtp)信賴區間
func (s *StatReport) Ci() CI {
	rtp := s.Rtp()
	std := s.Std()
	rtpSe := float64(0)
	if s.Summary.Rounds > 1 {
		rtpSe = std / math.Sqrt(float64(s.Summary.Rounds))
	}
	ci := CI{
		Lo: max(rtp-1.96*rtpSe, 0.0),
		Hi: rtp + 1.96*rtpSe,
	}
	return ci
}

func (s *StatReport) WriteWith(w io.Writer, rep StatReportRender) error {
	s.Done()
	return rep.Write(w, s)
}

func (s *StatReport) StdOut(ut time.Duration) {
	formatDuration(ut, s.Summary.Rounds)
	sk, sm := s.fmtBasic()
	str := fmtTable(s.Summary.VariantName, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, spins int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	sps := int(float64(spins) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\nsps : %d spins/sec\n", sec, sps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		s = s % 60
		p.Printf("used: %dm %ds\nsps : %d spins/sec\n", m, s, sps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\nsps : %d spins/sec\n", h, m, s, sps)
}

// StdOut

func (s *StatReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	basic := map[string]string{
		"Variant":      p.Sprintf("%s", s.Summary.VariantName),
		"Variant ID":   fmt.Sprintf("%d", s.Summary.VID),
		"Total Rounds": p.Sprintf("%d", s.Summary.Rounds),
		"Total RTP":    p.Sprintf("%.2f %%", 100.0*s.Summary.RTP),
		"RTP 95% CI":   p.Sprintf("[%.2f%%,%.2f%%]", 100.0*s.Summary.RtpCI.Lo, 100.0*s.Summary.RtpCI.Hi),
		"Total Bet":    p.Sprintf("%.2f", s.Summary.TotalBet),
		"Total Win":    p.Sprintf("%.2f", s.Summary.TotalWin),
		"Free Spins":   p.Sprintf("%d", s.Summary.FreeSpins),
		"NoWin Rounds": p.Sprintf("%d", s.Summary.NoWinRounds),
		"Hit Rate":     p.Sprintf("%.2f %%", 100.0*s.Summary.HitRate),
		"Trigger":      p.Sprintf("%d", s.Summary.Trigger),
		"STD":          p.Sprintf("%.3f", s.Summary.Std),
		"CV":           p.Sprintf("%.3f", s.Summary.Cv),
	}
	keys := []string{"Variant", "Variant ID", "Total Rounds", "Total RTP", "RTP 95% CI", "Total Bet", "Total Win", "Free Spins", "NoWin Rounds", "Hit Rate", "Trigger", "STD", "CV"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
