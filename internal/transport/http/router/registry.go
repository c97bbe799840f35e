package router

import (
	"cmp"
	"slices"

	"storefront-api/internal/transport/http/ez"
)

// APIModule is a resource that mounts its routes under /api/v1.
type APIModule interface{ MountAPI(ez.EZ) }

// 可选：数值越小越先挂，不实现默认 100
type prioritizer interface{ Priority() int }

const defaultPriority = 100

// Mount 按优先级挂载模块；同优先级保持传入顺序，nil 模块跳过
func Mount(e ez.EZ, mods ...APIModule) {
	ordered := slices.DeleteFunc(slices.Clone(mods), func(m APIModule) bool { return m == nil })
	slices.SortStableFunc(ordered, func(a, b APIModule) int {
		return cmp.Compare(priorityOf(a), priorityOf(b))
	})
	for _, m := range ordered {
		m.MountAPI(e)
	}
}

func priorityOf(m APIModule) int {
	if p, ok := m.(prioritizer); ok {
		return p.Priority()
	}
	return defaultPriority
}
