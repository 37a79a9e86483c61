package refresh

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"time"
)

const recordFormatVersionV1 = 1

// Flag byte offsets inside the encoded blob. The Lua scripts in redis.go
// index the same positions (1-based there); the two must move together.
const (
	usedFlagOffset    = 1
	revokedFlagOffset = 2
)

// Encode serializes a record for storage. Layout (version 1):
//
//	[0]    version
//	[1]    used flag (0/1)
//	[2]    revoked flag (0/1)
//	[3]    len(jwtID), then jwtID bytes
//	...    len(userID), then userID bytes
//	...    issuedAt unix-microseconds, int64 big-endian
//	...    expiresAt unix-microseconds, int64 big-endian
//
// The flags sit at fixed offsets so storage backends can flip them in place
// without reparsing the blob.
func Encode(r *Record) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionV1)
	buf.WriteByte(flagByte(r.Used))
	buf.WriteByte(flagByte(r.Revoked))

	if len(r.JWTID) > 255 {
		return nil, errors.New("jwtID too long")
	}
	buf.WriteByte(byte(len(r.JWTID)))
	buf.WriteString(r.JWTID)

	if len(r.UserID) > 255 {
		return nil, errors.New("userID too long")
	}
	buf.WriteByte(byte(len(r.UserID)))
	buf.WriteString(r.UserID)

	if err := binary.Write(&buf, binary.BigEndian, r.IssuedAt.UnixMicro()); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, r.ExpiresAt.UnixMicro()); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses an encoded record. The Token field is not part of the blob
// (it is the storage key) and is left empty.
func Decode(data []byte) (*Record, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionV1 {
		return nil, errors.New("invalid record version")
	}

	r := &Record{}

	used, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	revoked, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if used > 1 || revoked > 1 {
		return nil, errors.New("invalid record flags")
	}
	r.Used = used == 1
	r.Revoked = revoked == 1

	jwtLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	jwtID := make([]byte, jwtLen)
	if _, err := io.ReadFull(reader, jwtID); err != nil {
		return nil, err
	}
	r.JWTID = string(jwtID)

	userLen, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	userID := make([]byte, userLen)
	if _, err := io.ReadFull(reader, userID); err != nil {
		return nil, err
	}
	r.UserID = string(userID)

	var issuedAt, expiresAt int64
	if err := binary.Read(reader, binary.BigEndian, &issuedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return nil, err
	}
	r.IssuedAt = time.UnixMicro(issuedAt)
	r.ExpiresAt = time.UnixMicro(expiresAt)

	if reader.Len() != 0 {
		return nil, errors.New("trailing record bytes")
	}

	return r, nil
}

func flagByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
