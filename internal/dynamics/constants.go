package dynamics

// Physical constants in SI units.
const (
	ProtonMass     = 1.67262192369e-27
	NeutronMass    = 1.67492749804e-27
	ElectronMass   = 9.1093837015e-31
	ElementaryCharge = 1.602176634e-19
	OneEV          = 1.602176634e-19

	AlphaParticleMass   = 2*ProtonMass + 2*NeutronMass
	AlphaParticleCharge = 2 * ElementaryCharge

	// FusionAlphaEnergy is the 3.52 MeV birth energy of a D-T alpha.
	FusionAlphaEnergy = 3.52e6 * OneEV
)
