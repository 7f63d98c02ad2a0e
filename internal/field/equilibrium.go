package field

import (
	"errors"
	"math"

	"github.com/marodr/coiltrace/internal/geom"
)

// ErrGridShape indicates equilibrium grid data inconsistent with its
// declared dimensions.
var ErrGridShape = errors.New("field: equilibrium grid data length mismatch")

// Equilibrium wraps a precomputed field solution on a regular cylindrical
// grid. Loading and parsing the solution is an external collaborator's job;
// this model only interpolates the arrays it is handed and is read-only.
//
// Data holds cylindrical components (BR, BPhi, BZ) in row-major
// (R, phi, Z) order over one field period; phi is periodic with period
// 2pi/nfp. Queries outside the (R, Z) box report a DomainError.
type Equilibrium struct {
	rMin, rMax float64
	zMin, zMax float64
	nR, nPhi, nZ int
	nfp        int
	data       []geom.Vec3
}

func NewEquilibrium(rMin, rMax, zMin, zMax float64, nR, nPhi, nZ, nfp int, data []geom.Vec3) (*Equilibrium, error) {
	if len(data) != nR*nPhi*nZ {
		return nil, ErrGridShape
	}
	return &Equilibrium{
		rMin: rMin, rMax: rMax, zMin: zMin, zMax: zMax,
		nR: nR, nPhi: nPhi, nZ: nZ, nfp: nfp, data: data,
	}, nil
}

func (eq *Equilibrium) at(iR, iPhi, iZ int) geom.Vec3 {
	iPhi = ((iPhi % eq.nPhi) + eq.nPhi) % eq.nPhi
	return eq.data[(iR*eq.nPhi+iPhi)*eq.nZ+iZ]
}

func (eq *Equilibrium) B(p geom.Vec3) (geom.Vec3, error) {
	r := p.CylR()
	z := p[2]
	if r < eq.rMin || r > eq.rMax || z < eq.zMin || z > eq.zMax {
		return geom.Vec3{}, &DomainError{Position: p, Detail: "outside equilibrium grid"}
	}

	period := 2 * math.Pi / float64(eq.nfp)
	phi := math.Mod(p.Phi(), period)
	if phi < 0 {
		phi += period
	}

	fr := (r - eq.rMin) / (eq.rMax - eq.rMin) * float64(eq.nR-1)
	fp := phi / period * float64(eq.nPhi)
	fz := (z - eq.zMin) / (eq.zMax - eq.zMin) * float64(eq.nZ-1)

	iR := int(fr)
	if iR > eq.nR-2 {
		iR = eq.nR - 2
	}
	iZ := int(fz)
	if iZ > eq.nZ-2 {
		iZ = eq.nZ - 2
	}
	iPhi := int(fp)
	wr, wp, wz := fr-float64(iR), fp-float64(iPhi), fz-float64(iZ)

	var bCyl geom.Vec3
	for _, c := range []struct {
		dr, dp, dz int
		w          float64
	}{
		{0, 0, 0, (1 - wr) * (1 - wp) * (1 - wz)},
		{1, 0, 0, wr * (1 - wp) * (1 - wz)},
		{0, 1, 0, (1 - wr) * wp * (1 - wz)},
		{0, 0, 1, (1 - wr) * (1 - wp) * wz},
		{1, 1, 0, wr * wp * (1 - wz)},
		{1, 0, 1, wr * (1 - wp) * wz},
		{0, 1, 1, (1 - wr) * wp * wz},
		{1, 1, 1, wr * wp * wz},
	} {
		b := eq.at(iR+c.dr, iPhi+c.dp, iZ+c.dz)
		bCyl = bCyl.Add(b.Scale(c.w))
	}

	// Rotate (BR, BPhi, BZ) into cartesian components at the query angle.
	cp, sp := math.Cos(p.Phi()), math.Sin(p.Phi())
	return geom.Vec3{
		bCyl[0]*cp - bCyl[1]*sp,
		bCyl[0]*sp + bCyl[1]*cp,
		bCyl[2],
	}, nil
}
