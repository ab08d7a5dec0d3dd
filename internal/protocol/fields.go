package protocol

import (
	"math"
	"strconv"
	"strings"

	"google.golang.org/protobuf/types/known/structpb"
)

// Fields 扁平消息记录的只读视图。
//
// 缺失的键返回零值（"" / 0 / nil），数值与字符串可以互相转换，
// 这样服务端字段引号风格不一致时也不会导致整条消息被丢弃。
type Fields struct {
	s *structpb.Struct
}

// NewFields 包装一个已解析的 Struct，nil 表示空记录
func NewFields(s *structpb.Struct) Fields {
	return Fields{s: s}
}

func (f Fields) value(key string) (*structpb.Value, bool) {
	if f.s == nil {
		return nil, false
	}
	v, ok := f.s.GetFields()[key]
	return v, ok && v != nil
}

// Has 字段是否存在
func (f Fields) Has(key string) bool {
	_, ok := f.value(key)
	return ok
}

// String 以字符串形式读取标量字段
func (f Fields) String(key string) string {
	v, ok := f.value(key)
	if !ok {
		return ""
	}
	return scalarString(v)
}

// Int 以整数形式读取标量字段，无法解析时返回 0
func (f Fields) Int(key string) int64 {
	v, ok := f.value(key)
	if !ok {
		return 0
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		if math.IsNaN(k.NumberValue) || math.IsInf(k.NumberValue, 0) {
			return 0
		}
		return int64(k.NumberValue)
	case *structpb.Value_StringValue:
		return parseInt(k.StringValue)
	}
	return 0
}

// Strings 读取数组字段，元素按标量转成字符串；非数组返回 nil
func (f Fields) Strings(key string) []string {
	v, ok := f.value(key)
	if !ok {
		return nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list.GetValues()))
	for _, item := range list.GetValues() {
		if s := scalarString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Len 数组字段的长度
func (f Fields) Len(key string) int {
	v, ok := f.value(key)
	if !ok {
		return 0
	}
	return len(v.GetListValue().GetValues())
}

// Object 读取嵌套对象字段；缺失时返回空视图
func (f Fields) Object(key string) Fields {
	v, ok := f.value(key)
	if !ok {
		return Fields{}
	}
	return Fields{s: v.GetStructValue()}
}

func scalarString(v *structpb.Value) string {
	switch k := v.GetKind().(type) {
	case *structpb.Value_StringValue:
		return k.StringValue
	case *structpb.Value_NumberValue:
		return formatNumber(k.NumberValue)
	case *structpb.Value_BoolValue:
		return strconv.FormatBool(k.BoolValue)
	}
	return ""
}

func formatNumber(n float64) string {
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
		return int64(n)
	}
	return 0
}
