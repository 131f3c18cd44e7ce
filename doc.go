/*
Package bethe drives the self-consistency loop of a Dynamical Mean-Field
Theory computation on the semicircular (Bethe) lattice.

Given a current self-energy it derives a new hybridization function, checks
convergence against the previous iterate, and repeats after invoking an
external many-body impurity solver. The numerical core (the lattice
Hilbert transform, the chemical-potential bisection, the self-energy
reconstruction, and the mixing strategies) lives under pkg/; the external
toolchain (ODE adapters, NRG solver, broadening and Kramers-Kronig tools)
is reached only through the ports defined in pkg/ports.

A minimal run:

	eng, err := bethe.New(".",
		bethe.WithSolver(pipeline),
		bethe.WithRealParts(process.NewKramersKronig(".")),
		bethe.WithInitializer(seed.FlatGuess{Gamma: 0.3, OmegaMin: -4, OmegaMax: 4, Points: 300}),
		bethe.WithMixer(mixing.Linear{}, 0.1),
	)
	if err != nil {
		log.Fatal(err)
	}
	state, err := eng.Run(ctx, "run-1")
*/
package bethe
