package adder

import "github.com/nspcc-dev/neo-go/pkg/interop/storage"

const sumKey = "sum"

func Add(value int) {
	ctx := storage.GetContext()
	storage.Put(ctx, sumKey, sum(ctx)+value)
}

func Sum() int {
	return sum(storage.GetReadOnlyContext())
}

func sum(ctx storage.Context) int {
	raw := storage.Get(ctx, sumKey)
	if raw == nil {
		return 0
	}
	return raw.(int)
}
