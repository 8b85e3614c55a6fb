/*
Package tablewatch generates data processing units from a JSON manifest and keeps a running
orchestrator in sync with it.

The manifest is a JSON array of {"name", "source_table"} objects. Build reads it once at
startup, registers one unit per entry plus the shared external source they all read from,
and wires a sensor that watches the manifest's modification time. When the file changes,
the sensor asks the orchestrator to reload its code location over GraphQL so the next load
picks up the new units.

Usage:

	defs, err := tablewatch.Build("assets.json",
		tablewatch.WithReloadTarget("localhost", 3000),
		tablewatch.WithCursorStore(file.New(file.DefaultDir)),
	)
	if err != nil {
		log.Fatal(err)
	}

	sched := scheduler.New(defs.Sensor(), defs.Sensor().MinimumInterval())
	if err := sched.Run(ctx); err != nil {
		log.Fatal(err)
	}

Each evaluation returns a skip status describing what happened; the sensor never fails a tick.
The last observed modification time is persisted under the sensor's name, so a restart does
not trigger a spurious reload.
*/
package tablewatch
