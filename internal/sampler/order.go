package sampler

import "github.com/Dicklesworthstone/procmon/internal/model"

// Order is a named sort key for the process table.
type Order struct {
	Name string
	Less func(a, b model.Process) bool
}

var (
	// ByCPU puts the busiest process first.
	ByCPU = Order{Name: "cpu", Less: func(a, b model.Process) bool { return a.CPU > b.CPU }}
	// ByMemory puts the largest resident set first.
	ByMemory = Order{Name: "mem", Less: func(a, b model.Process) bool { return a.RAMMB > b.RAMMB }}
	// ByAge puts the oldest process first.
	ByAge = Order{Name: "age", Less: func(a, b model.Process) bool { return a.AgeSeconds > b.AgeSeconds }}
	// ByPID sorts by ascending id.
	ByPID = Order{Name: "pid", Less: func(a, b model.Process) bool { return a.PID < b.PID }}
)

var orders = []Order{ByCPU, ByMemory, ByAge, ByPID}

// OrderNames lists the names accepted by OrderByName.
func OrderNames() []string {
	names := make([]string, len(orders))
	for i, o := range orders {
		names[i] = o.Name
	}
	return names
}

// OrderByName looks an order up by its name.
func OrderByName(name string) (Order, bool) {
	for _, o := range orders {
		if o.Name == name {
			return o, true
		}
	}
	return Order{}, false
}

// NextOrder returns the order following name, wrapping around.
func NextOrder(name string) Order {
	for i, o := range orders {
		if o.Name == name {
			return orders[(i+1)%len(orders)]
		}
	}
	return ByCPU
}
