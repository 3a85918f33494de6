package ctxkeys

import "context"

// CycleIDKey 决策周期ID在 context 中的键
type CycleIDKey struct{}

// WithCycleID 将周期ID写入 context
func WithCycleID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CycleIDKey{}, id)
}

// CycleID 读取周期ID，不存在时返回空串
func CycleID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(CycleIDKey{}).(string)
	return id
}
