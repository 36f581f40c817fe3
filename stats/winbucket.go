package stats

// WinBuckets
//
// 用來定位贏倍 -> DistRecord 位置
//
// 請勿修改預設值
//   - win區間: 贏倍區間 [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
type WinBuckets struct {
	winBucket    []float64
	winBucketStr []string
}

// Buckets
//
// 用來定位贏倍 -> DistRecord 位置
//
// 請勿修改預設值
//   - win區間: 贏倍區間 [0,0], (0,1), [1,2), [2,5), ..., [2000,10000), [10000, +inf)
var Buckets *WinBuckets = &WinBuckets{
	winBucket:    []float64{0, 1, 2, 5, 10, 20, 50, 100, 300, 500, 1000, 2000, 10000},
	winBucketStr: []string{"[0,0]", "(0,1)", "[1,2)", "[2,5)", "[5,10)", "[10,20)", "[20,50)", "[50,100)", "[100,300)", "[300,500)", "[500,1000)", "[1000,2000)", "[2000,10000)", "[10000,+inf)"},
}

func (b *WinBuckets) WinBucketStr() []string {
	return b.winBucketStr
}

// Index 回傳贏倍（派彩 / 押注）對應的分桶位置。
//
// 派彩是 float64，無法像整數分數那樣建 LUT 反查表；
// 邊界只有 13 個，線性掃描的成本在熱路徑可忽略。
func (b *WinBuckets) Index(mult float64) int {
	if mult <= 0 {
		return 0
	}
	last := len(b.winBucket) - 1
	if mult >= b.winBucket[last] {
		return len(b.winBucket)
	}
	idx := 1
	for idx < last && mult >= b.winBucket[idx] {
		idx++
	}
	return idx
}

// Size 回傳分桶數量（含 [0,0] 與 [10000,+inf) 兩端）。
func (b *WinBuckets) Size() int {
	return len(b.winBucketStr)
}
