// Package sweep runs the Metropolis cycle at every temperature of a range in
// parallel and collects one [stats.Record] per temperature.
//
// # Example
//
//	d, err := sweep.New(*cfg, sweep.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	result, err := d.Run(ctx)
//
// # Thread Safety
//
// Each temperature gets its own lattice and random source, seeded from the
// configured seed and the temperature's position in the sequence, so results
// do not depend on the number of workers. The only state shared between
// workers is the progress channel.
package sweep
