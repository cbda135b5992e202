package dogm

import "testing"

func TestParamsValidateAccepts(t *testing.T) {
	p := baseParams()
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
}

func TestParamsValidateRejectsInvalidFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero size", func(p *Params) { p.Size = 0 }},
		{"zero resolution", func(p *Params) { p.Resolution = 0 }},
		{"resolution exceeds size", func(p *Params) { p.Resolution = p.Size + 1 }},
		{"zero particle count", func(p *Params) { p.ParticleCount = 0 }},
		{"zero new born count", func(p *Params) { p.NewBornParticleCount = 0 }},
		{"persistence prob too high", func(p *Params) { p.PersistenceProb = 1.1 }},
		{"persistence prob negative", func(p *Params) { p.PersistenceProb = -0.1 }},
		{"negative position noise", func(p *Params) { p.StddevProcessNoisePosition = -1 }},
		{"negative velocity noise", func(p *Params) { p.StddevProcessNoiseVelocity = -1 }},
		{"birth prob too high", func(p *Params) { p.BirthProb = 1.1 }},
		{"negative stddev velocity", func(p *Params) { p.StddevVelocity = -1 }},
		{"negative init max velocity", func(p *Params) { p.InitMaxVelocity = -1 }},
		{"freespace discount too high", func(p *Params) { p.FreespaceDiscount = 1.1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := baseParams()
			tc.mutate(&p)
			if err := p.Validate(); err == nil {
				t.Errorf("Validate() = nil, want an error for %s", tc.name)
			}
		})
	}
}
