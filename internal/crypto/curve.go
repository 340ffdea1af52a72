package crypto

import "math/big"

// curve holds short Weierstrass parameters y^2 = x^3 + a*x + b (mod p) for
// an arbitrary curve. The standard library's crypto/elliptic.CurveParams
// hard-codes a = -3 in its point-doubling formulas (it only ever shipped
// NIST P-curves), which makes it unusable for secp192k1 where a = 0. No
// library in the example corpus exposes a generic short-Weierstrass engine
// either, so this file is the one piece of curve arithmetic implemented
// directly against math/big rather than an imported library; see
// DESIGN.md for the full justification.
type curve struct {
	p, a, b, gx, gy, n *big.Int
	byteLen            int
}

// point is an affine point; a nil x denotes the point at infinity.
type point struct {
	x, y *big.Int
}

func (c *curve) infinity() point {
	return point{}
}

func (c *curve) isInfinity(p point) bool {
	return p.x == nil
}

func (c *curve) double(p point) point {
	if c.isInfinity(p) || p.y.Sign() == 0 {
		return c.infinity()
	}

	// lambda = (3x^2 + a) / 2y
	xx := new(big.Int).Mul(p.x, p.x)
	xx.Mul(xx, big.NewInt(3))
	xx.Add(xx, c.a)

	twoY := new(big.Int).Lsh(p.y, 1)
	twoYInv := new(big.Int).ModInverse(twoY, c.p)

	lambda := new(big.Int).Mul(xx, twoYInv)
	lambda.Mod(lambda, c.p)

	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, new(big.Int).Lsh(p.x, 1))
	x3.Mod(x3, c.p)

	y3 := new(big.Int).Sub(p.x, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p.y)
	y3.Mod(y3, c.p)

	return point{x: x3.Mod(x3, c.p), y: y3.Mod(y3, c.p)}
}

func (c *curve) add(p1, p2 point) point {
	if c.isInfinity(p1) {
		return p2
	}
	if c.isInfinity(p2) {
		return p1
	}
	if p1.x.Cmp(p2.x) == 0 {
		sum := new(big.Int).Add(p1.y, p2.y)
		sum.Mod(sum, c.p)
		if sum.Sign() == 0 {
			return c.infinity()
		}
		return c.double(p1)
	}

	// lambda = (y2 - y1) / (x2 - x1)
	dy := new(big.Int).Sub(p2.y, p1.y)
	dx := new(big.Int).Sub(p2.x, p1.x)
	dx.Mod(dx, c.p)
	dxInv := new(big.Int).ModInverse(dx, c.p)

	lambda := new(big.Int).Mul(dy, dxInv)
	lambda.Mod(lambda, c.p)

	x3 := new(big.Int).Mul(lambda, lambda)
	x3.Sub(x3, p1.x)
	x3.Sub(x3, p2.x)
	x3.Mod(x3, c.p)

	y3 := new(big.Int).Sub(p1.x, x3)
	y3.Mul(y3, lambda)
	y3.Sub(y3, p1.y)
	y3.Mod(y3, c.p)

	return point{x: x3.Mod(x3, c.p), y: y3.Mod(y3, c.p)}
}

// scalarMult computes k*P via left-to-right double-and-add.
func (c *curve) scalarMult(k *big.Int, p point) point {
	result := c.infinity()
	for i := k.BitLen() - 1; i >= 0; i-- {
		result = c.double(result)
		if k.Bit(i) == 1 {
			result = c.add(result, p)
		}
	}
	return result
}

func (c *curve) basePoint() point {
	return point{x: new(big.Int).Set(c.gx), y: new(big.Int).Set(c.gy)}
}

// marshalUncompressed encodes p as 0x04 || X || Y, each coordinate
// zero-padded to byteLen bytes.
func (c *curve) marshalUncompressed(p point) []byte {
	out := make([]byte, 1+2*c.byteLen)
	out[0] = 0x04
	p.x.FillBytes(out[1 : 1+c.byteLen])
	p.y.FillBytes(out[1+c.byteLen:])
	return out
}

// marshalCompressed encodes p as 0x02/0x03 || X.
func (c *curve) marshalCompressed(p point) []byte {
	out := make([]byte, 1+c.byteLen)
	if p.y.Bit(0) == 0 {
		out[0] = 0x02
	} else {
		out[0] = 0x03
	}
	p.x.FillBytes(out[1:])
	return out
}

// unmarshalUncompressed decodes a 0x04-prefixed point.
func (c *curve) unmarshalUncompressed(data []byte) (point, bool) {
	if len(data) != 1+2*c.byteLen || data[0] != 0x04 {
		return point{}, false
	}
	x := new(big.Int).SetBytes(data[1 : 1+c.byteLen])
	y := new(big.Int).SetBytes(data[1+c.byteLen:])
	return point{x: x, y: y}, true
}

// secp192k1 parameters, as standardized in SEC 2.
func secp192k1() *curve {
	hex := func(s string) *big.Int {
		v, ok := new(big.Int).SetString(s, 16)
		if !ok {
			panic("crypto: invalid secp192k1 constant")
		}
		return v
	}
	return &curve{
		p:       hex("FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFEFFFFFFFFFFFFFFFF"),
		a:       big.NewInt(0),
		b:       big.NewInt(3),
		gx:      hex("DB4FF10EC057E9AE26B07D0280B7F4341DA5D1B1EAE06C7D"),
		gy:      hex("9B2F2F6D9C5628A7844163D015BE86344082AA88D95E2F9D"),
		n:       hex("FFFFFFFFFFFFFFFFFFFFFFFE26F2FC170F69466A74DEFD8D"),
		byteLen: 24,
	}
}
