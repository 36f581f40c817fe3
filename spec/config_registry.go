package spec

import (
	"encoding/json"

	"github.com/zintix-labs/spinlab/errs"
	"gopkg.in/yaml.v3"
)

// GetVariantSettingByYAML
// 會讀取 YAML 設定、初始化並執行基本檢查後回傳。
func GetVariantSettingByYAML(data []byte) (*VariantSetting, error) {
	vs := &VariantSetting{}
	if err := yaml.Unmarshal(data, vs); err != nil {
		return nil, errs.Wrap(err, "failed to unmarshall yaml")
	}

	// 設定檔初始化
	if err := vs.Init(); err != nil {
		return nil, errs.Wrap(err, "variant setting initialized err")
	}

	return vs, nil
}

// GetVariantSettingByJSON
// 會讀取 Json 設定、初始化並執行基本檢查後回傳
func GetVariantSettingByJSON(data []byte) (*VariantSetting, error) {
	vs := &VariantSetting{}
	if err := json.Unmarshal(data, vs); err != nil {
		return nil, errs.Wrap(err, "can not unmarshall json byte")
	}

	// 設定檔初始化
	if err := vs.Init(); err != nil {
		return nil, errs.Wrap(err, "variant setting initialized err")
	}

	return vs, nil
}
