package tablewatch_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/tablewatch"
	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/aretw0/tablewatch/pkg/ports"
	"github.com/aretw0/tablewatch/pkg/sensor"
)

func Example() {
	dir, _ := os.MkdirTemp("", "tablewatch-example")
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "assets.json")
	_ = os.WriteFile(path, []byte(`[{"name":"orders","source_table":"raw.orders"}]`), 0644)

	// A stub reloader stands in for the orchestrator.
	reloader := ports.ReloaderFunc(func(ctx context.Context, location string) domain.ReloadOutcome {
		fmt.Println("reloading", location)
		return domain.ReloadOutcome{Kind: domain.OutcomeSuccess}
	})

	defs, err := tablewatch.Build(path,
		tablewatch.WithReloader(reloader),
		tablewatch.WithSensorOptions(sensor.WithTarget("definitions.py")),
	)
	if err != nil {
		fmt.Println(err)
		return
	}

	out, _ := defs.Materialize(context.Background(), "orders")
	fmt.Println(out)

	defs.Sensor().Evaluate(context.Background())
	fmt.Println(defs.Sensor().Evaluate(context.Background()).Status.Message)

	// Output:
	// Data from raw.orders
	// reloading definitions.py
	// no changes detected
}
