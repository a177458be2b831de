package capacity

import (
	"sort"
	"strings"
)

// SortNodes sorts nodes by the given field, descending for resource
// fields so the most loaded node comes first. Unknown fields fall back
// to name order.
func SortNodes(nodes []NodeInfo, sortBy string) {
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]

		switch sortBy {
		case "cpu.request":
			return a.CPU.Requested > b.CPU.Requested
		case "cpu.limit":
			return a.CPU.Limited > b.CPU.Limited
		case "cpu.util":
			return a.CPU.Utilized > b.CPU.Utilized
		case "mem.request", "memory.request":
			return a.Memory.Requested > b.Memory.Requested
		case "mem.limit", "memory.limit":
			return a.Memory.Limited > b.Memory.Limited
		case "mem.util", "memory.util":
			return a.Memory.Utilized > b.Memory.Utilized
		case "pod.count":
			return a.PodCount.Requested > b.PodCount.Requested
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	})
}
