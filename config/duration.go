package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Duration 可从 JSON 和命令行读取的时长
//
// JSON 中写作 "1ms"、"250us" 这样的字符串，也接受整数纳秒。
// 实现 flag.Value，可以直接作为命令行参数使用。
type Duration time.Duration

// errNegativeDuration 时长不能为负
var errNegativeDuration = errors.New("negative duration")

// ParseDuration 解析非负时长
func ParseDuration(s string) (Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %s", errNegativeDuration, s)
	}
	return Duration(d), nil
}

// UnmarshalJSON 实现 json.Unmarshaler
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*d = parsed
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string like \"1ms\" or integer nanoseconds: %s", data)
	}
	if n < 0 {
		return fmt.Errorf("%w: %d", errNegativeDuration, n)
	}
	*d = Duration(n)
	return nil
}

// MarshalJSON 实现 json.Marshaler，输出字符串形式
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Set 实现 flag.Value
func (d *Duration) Set(s string) error {
	parsed, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Duration 返回 time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// String 实现 fmt.Stringer 和 flag.Value
func (d Duration) String() string {
	return time.Duration(d).String()
}
