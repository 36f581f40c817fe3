package spec

// Symbol 是機台符號。符號集由變體設定定義，內容為任意非空字串
// （例如 "cherry"、"seven"），不做全域列舉。
type Symbol string

// VID 是變體（機台規格）的唯一識別碼。
type VID int

// WinTier 表示單次旋轉的贏分級距。
type WinTier int

const (
	TierNone WinTier = iota
	TierSmall
	TierMedium
	TierBig
	TierJackpot
)

var tierNames = map[WinTier]string{
	TierNone:    "none",
	TierSmall:   "small",
	TierMedium:  "medium",
	TierBig:     "big",
	TierJackpot: "jackpot",
}

func (t WinTier) String() string {
	if s, ok := tierNames[t]; ok {
		return s
	}
	return "none"
}
