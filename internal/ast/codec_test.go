package ast

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
)

func TestBinaryUnitPreservesTree(t *testing.T) {
	u, err := ReadUnit([]byte(pointUnit))
	be.Err(t, err, nil)

	data, err := MarshalUnit(u)
	be.Err(t, err, nil)
	got, err := DecodeUnit(data)
	be.Err(t, err, nil)

	be.Equal(t, got, u)
}

func TestDecodeUnitRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	u := &Unit{Module: "a"}
	be.Err(t, EncodeUnit(&buf, u), nil)
	data := buf.Bytes()

	_, err := DecodeUnit(data[:len(data)/2])
	be.Err(t, err)

	// nil вместо конверта: схема 0 не совпадает с текущей
	_, err = DecodeUnit([]byte{0xc0})
	be.Err(t, err)
}
