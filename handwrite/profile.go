// Package handwrite 把规范化后的文书渲染为模拟手写的栅格图像。
package handwrite

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/ByLCY/wenshu/fontres"
	"github.com/ByLCY/wenshu/logger"
	"github.com/ByLCY/wenshu/store"
)

// ProfileKey 是手写风格档案在持久化存储中的键。
const ProfileKey = "handwrite_style"

var (
	// ErrFontUnavailable 表示解析不到可用的字体文件。
	ErrFontUnavailable = errors.New("无可用手写字体")
	// ErrRenderingUnavailable 表示环境缺少图像渲染能力。
	ErrRenderingUnavailable = errors.New("图像渲染不可用")
)

// Profile 描述一次手写渲染的字体与抖动参数。
type Profile struct {
	Font      string  `json:"font"`
	FontSize  int     `json:"font_size"`
	LineGap   int     `json:"line_gap"`
	RotateMin float64 `json:"rotate_min"`
	RotateMax float64 `json:"rotate_max"`
	Jitter    int     `json:"jitter"`
}

// Validate 校验档案不变式：字号为正、行距与抖动非负、旋转区间有序。
func (p Profile) Validate() error {
	if p.Font == "" {
		return fmt.Errorf("手写档案缺少字体路径")
	}
	if p.FontSize <= 0 {
		return fmt.Errorf("字号必须为正数：%d", p.FontSize)
	}
	if p.LineGap < 0 {
		return fmt.Errorf("行距不能为负数：%d", p.LineGap)
	}
	if p.Jitter < 0 {
		return fmt.Errorf("抖动不能为负数：%d", p.Jitter)
	}
	if p.RotateMin > p.RotateMax {
		return fmt.Errorf("旋转区间无序：[%g, %g]", p.RotateMin, p.RotateMax)
	}
	return nil
}

// TrainProfile 从可用字体中随机合成一份手写档案并持久化。
// 没有任何可用字体时返回 ErrFontUnavailable。
func TrainProfile(s store.Store, fonts fontres.Resolver, rng *rand.Rand, log *logger.Logger) (Profile, error) {
	if log == nil {
		log = logger.Nop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	available := fonts.Available()
	if len(available) == 0 {
		return Profile{}, ErrFontUnavailable
	}

	sizes := []int{36, 40, 44}
	gaps := []int{14, 18, 22}
	jitters := []int{0, 1, 2}
	p := Profile{
		Font:      available[rng.Intn(len(available))],
		FontSize:  sizes[rng.Intn(len(sizes))],
		LineGap:   gaps[rng.Intn(len(gaps))],
		RotateMin: -2,
		RotateMax: 2,
		Jitter:    jitters[rng.Intn(len(jitters))],
	}

	if blob, err := json.Marshal(p); err == nil {
		if err := s.Save(ProfileKey, blob); err != nil {
			log.Warn("保存手写档案失败", "error", err)
		}
	}
	return p, nil
}

// LoadProfile 读取持久化的手写档案；缺失、损坏或字体文件不存在时
// 退回 TrainProfile 重新合成。
func LoadProfile(s store.Store, fonts fontres.Resolver, rng *rand.Rand, log *logger.Logger) (Profile, error) {
	if log == nil {
		log = logger.Nop()
	}
	blob, err := s.Load(ProfileKey)
	if err != nil {
		log.Warn("读取手写档案失败，重新合成", "error", err)
		return TrainProfile(s, fonts, rng, log)
	}
	if len(blob) == 0 {
		return TrainProfile(s, fonts, rng, log)
	}
	var p Profile
	if err := json.Unmarshal(blob, &p); err != nil {
		log.Warn("手写档案损坏，重新合成", "error", err)
		return TrainProfile(s, fonts, rng, log)
	}
	if err := p.Validate(); err != nil {
		log.Warn("手写档案不满足不变式，重新合成", "error", err)
		return TrainProfile(s, fonts, rng, log)
	}
	if _, err := os.Stat(p.Font); err != nil {
		log.Warn("档案中的字体文件不存在，重新合成", "font", p.Font)
		return TrainProfile(s, fonts, rng, log)
	}
	return p, nil
}
