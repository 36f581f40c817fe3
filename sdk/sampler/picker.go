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

package sampler

import (
	"github.com/zintix-labs/spinlab/sdk/core"
)

// Picker 是所有加權抽樣結構的共同介面：從離散分佈抽一個索引。
type Picker interface {
	Pick(c *core.Core) int
}

// lutPreferredTotal 以下的權重總和選 LUT，超過選 AliasTable。
const lutPreferredTotal = 100_000

// ForWeights 依權重特性選擇抽樣結構：
// 權重總和小走 LUT（單次 IntN），總和大走 AliasTable（記憶體 O(N)）。
// 呼叫端不需要關心底層結構，只拿 Picker。
func ForWeights(weights []int) Picker {
	total := 0
	for _, w := range weights {
		total += w
	}
	if total > 0 && uint64(total) <= lutPreferredTotal {
		return BuildLUT(weights)
	}
	return BuildAliasTable(weights)
}
