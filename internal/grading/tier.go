// Package grading 成绩计算引擎：分数汇总、百分比与等级评定
//
// 包内函数均为纯函数，不做范围校验（由 DTO 绑定层负责），缺省分数按 0 处理。
package grading

import "strings"

// Tier 班级档次，决定读取哪一组分数字段
type Tier string

const (
	TierPrimary  Tier = "PRIMARY"  // 1、2 年级及幼儿园：周期笔试/口试
	TierStandard Tier = "STANDARD" // 3 年级及以上：PT/NB/SEA/期中期末
)

var primaryClasses = map[string]struct{}{
	"1": {}, "2": {}, "I": {}, "II": {}, "1ST": {}, "2ND": {},
	"KG": {}, "LKG": {}, "UKG": {}, "NURSERY": {},
}

// ClassifyTier 判断班级档次
// 包含 "KG" 子串的班级名一律视为低年级（例如 "BACKGROUND"），成绩单版式依赖该规则
func ClassifyTier(class string) Tier {
	c := strings.ToUpper(strings.TrimSpace(class))
	if _, ok := primaryClasses[c]; ok {
		return TierPrimary
	}
	if strings.Contains(c, "KG") {
		return TierPrimary
	}
	return TierStandard
}

// IsPrimary 便捷判断
func (t Tier) IsPrimary() bool { return t == TierPrimary }
