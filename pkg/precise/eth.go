package precise

import (
	"encoding/json"
	"math/big"
)

const (
	precision = 256
	decimals  = 18
)

// ETH is an arbitrary-precision amount of Ether, used for gas accounting
// where float64 would lose wei-level accuracy.
type ETH big.Float

func NewETH(f *big.Float) *ETH {
	if f == nil {
		f = new(big.Float)
	} else {
		f = new(big.Float).Copy(f)
	}
	return (*ETH)(f.SetPrec(precision))
}

func NewETH64(f float64) *ETH {
	return NewETH(big.NewFloat(f))
}

func (e *ETH) Float() *big.Float {
	return (*big.Float)(e)
}

func (e *ETH) Add(a, b *ETH) *ETH {
	e.Float().Add((*big.Float)(a), (*big.Float)(b))
	return e
}

func (e *ETH) String() string {
	return e.Float().Text('f', decimals)
}

func (e *ETH) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *ETH) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *ETH) Wei() *big.Int {
	wei := new(big.Int)
	copy := new(big.Float).Copy(e.Float())
	copy.Mul(copy, big.NewFloat(1e18))
	copy.Int(wei)
	return wei
}

func (e *ETH) SetWei(wei *big.Int) *ETH {
	e.Float().SetInt(wei)
	e.Float().Quo(e.Float(), big.NewFloat(1e18))
	return e
}
