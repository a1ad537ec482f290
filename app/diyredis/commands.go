package diyredis

import (
	"strconv"
	"strings"
)

// --- 4.G Command dispatcher ----------------------------------------------
//
// dispatch implements the three-way split of spec.md §4.G: transaction
// control words always run immediately; everything else is either queued
// (inside a transaction) or executed against the engine (outside one).
// Handlers write their reply directly into s.enc; dispatch never returns an
// error itself; all failures become RESP error replies.
func (s *Session) dispatch(cmd []string) {
	name := strings.ToUpper(cmd[0])

	switch name {
	case "MULTI":
		s.doMULTI(cmd)
		return
	case "EXEC":
		s.doEXEC(cmd)
		return
	case "DISCARD":
		s.doDISCARD(cmd)
		return
	}

	if s.tx.inMulti {
		s.tx.enqueue(cmd)
		s.enc.WriteSimpleStr("QUEUED")
		return
	}

	s.execute(cmd)
}

// execute runs one already-decided (non-transaction-control) command
// immediately against the engine. Called both from dispatch's direct path
// and from doEXEC for each queued command.
func (s *Session) execute(cmd []string) {
	name := strings.ToUpper(cmd[0])

	switch name {
	case "PING":
		s.doPING(cmd)
	case "ECHO":
		s.doECHO(cmd)
	case "SET":
		s.doSET(cmd)
	case "GET":
		s.doGET(cmd)
	case "INCR":
		s.doINCR(cmd)
	case "TYPE":
		s.doTYPE(cmd)
	case "KEYS":
		s.doKEYS(cmd)
	case "CONFIG":
		s.doCONFIG(cmd)
	case "INFO":
		s.doINFO(cmd)
	case "RPUSH":
		s.doRPUSH(cmd)
	case "LPUSH":
		s.doLPUSH(cmd)
	case "LPOP":
		s.doLPOP(cmd)
	case "LLEN":
		s.doLLEN(cmd)
	case "LRANGE":
		s.doLRANGE(cmd)
	case "BLPOP":
		s.doBLPOP(cmd)
	case "XADD":
		s.doXADD(cmd)
	case "XRANGE":
		s.doXRANGE(cmd)
	case "XREAD":
		s.doXREAD(cmd)
	default:
		s.enc.WriteError(errUnknownCommand.Error())
	}
}

func (s *Session) writeErr(err error) {
	s.enc.WriteError(err.Error())
}

func (s *Session) doPING(cmd []string) {
	s.enc.WriteSimpleStr("PONG")
}

func (s *Session) doECHO(cmd []string) {
	if len(cmd) != 2 {
		s.writeErr(arityErr("echo"))
		return
	}
	s.enc.WriteBulkStr(cmd[1])
}

// --- 4.B Keyspace ---------------------------------------------------

func (s *Session) doSET(cmd []string) {
	if len(cmd) < 3 {
		s.writeErr(arityErr("set"))
		return
	}

	var pxMillis int64
	var havePx bool
	if len(cmd) > 3 {
		if len(cmd) != 5 || !foldEqual(cmd[3], "px") {
			s.writeErr(errSyntax)
			return
		}
		ms, err := strconv.ParseInt(cmd[4], 10, 64)
		if err != nil || ms < 0 {
			s.writeErr(errInvalidPX)
			return
		}
		pxMillis = ms
		havePx = true
	}

	s.engine.Set(cmd[1], []byte(cmd[2]), pxMillis, havePx)
	s.enc.WriteSimpleStr("OK")
}

func (s *Session) doGET(cmd []string) {
	if len(cmd) != 2 {
		s.writeErr(arityErr("get"))
		return
	}
	val, ok, err := s.engine.Get(cmd[1])
	if err != nil {
		s.writeErr(err)
		return
	}
	if !ok {
		s.enc.WriteNullBulk()
		return
	}
	s.enc.WriteBulkStr(string(val))
}

func (s *Session) doINCR(cmd []string) {
	if len(cmd) != 2 {
		s.writeErr(arityErr("incr"))
		return
	}
	n, err := s.engine.Incr(cmd[1])
	if err != nil {
		s.writeErr(err)
		return
	}
	s.enc.WriteInt(n)
}

func (s *Session) doTYPE(cmd []string) {
	if len(cmd) != 2 {
		s.writeErr(arityErr("type"))
		return
	}
	s.enc.WriteSimpleStr(s.engine.Type(cmd[1]))
}

func (s *Session) doKEYS(cmd []string) {
	if len(cmd) != 2 {
		s.writeErr(arityErr("keys"))
		return
	}
	writeStrArr(&s.enc, s.engine.Keys())
}

// doCONFIG implements the teacher's own supplemental CONFIG GET dir /
// dbfilename, kept per SPEC_FULL.md even though durability itself
// (loading/writing an RDB file) is out of scope. Both report the values given
// by the --dir/--dbfilename flags (empty by default); no file is ever read.
func (s *Session) doCONFIG(cmd []string) {
	if len(cmd) != 3 || !foldEqual(cmd[1], "get") {
		s.writeErr(errSyntax)
		return
	}
	switch {
	case foldEqual(cmd[2], "dir"):
		writeStrArr(&s.enc, []string{"dir", s.server.ConfigDir})
	case foldEqual(cmd[2], "dbfilename"):
		writeStrArr(&s.enc, []string{"dbfilename", s.server.ConfigDBFilename})
	default:
		s.enc.WriteEmptyArr()
	}
}

// doINFO replies the static "role:master" for the replication section (or
// when no section is given); any other section replies an empty bulk
// string, per spec.md §4.G.
func (s *Session) doINFO(cmd []string) {
	if len(cmd) >= 2 && !foldEqual(cmd[1], "replication") {
		s.enc.WriteBulkStr("")
		return
	}
	s.enc.WriteBulkStr("role:master")
}

// --- 4.D List engine --------------------------------------------------

func (s *Session) doRPUSH(cmd []string) {
	if len(cmd) < 3 {
		s.writeErr(arityErr("rpush"))
		return
	}
	n, err := s.engine.RPush(cmd[1], strsToBytes(cmd[2:]))
	if err != nil {
		s.writeErr(err)
		return
	}
	s.enc.WriteInt(int64(n))
}

func (s *Session) doLPUSH(cmd []string) {
	if len(cmd) < 3 {
		s.writeErr(arityErr("lpush"))
		return
	}
	n, err := s.engine.LPush(cmd[1], strsToBytes(cmd[2:]))
	if err != nil {
		s.writeErr(err)
		return
	}
	s.enc.WriteInt(int64(n))
}

func (s *Session) doLPOP(cmd []string) {
	if len(cmd) < 2 || len(cmd) > 3 {
		s.writeErr(arityErr("lpop"))
		return
	}
	hasCount := len(cmd) == 3
	var count int
	if hasCount {
		n, err := strconv.Atoi(cmd[2])
		if err != nil {
			s.writeErr(errNotInteger)
			return
		}
		count = n
	}

	values, singular, err := s.engine.LPop(cmd[1], hasCount, count)
	if err != nil {
		s.writeErr(err)
		return
	}
	if singular {
		if len(values) == 0 {
			s.enc.WriteNullBulk()
			return
		}
		s.enc.WriteBulkStr(string(values[0]))
		return
	}
	writeByteArr(&s.enc, values)
}

func (s *Session) doLLEN(cmd []string) {
	if len(cmd) != 2 {
		s.writeErr(arityErr("llen"))
		return
	}
	n, err := s.engine.LLen(cmd[1])
	if err != nil {
		s.writeErr(err)
		return
	}
	s.enc.WriteInt(int64(n))
}

func (s *Session) doLRANGE(cmd []string) {
	if len(cmd) != 4 {
		s.writeErr(arityErr("lrange"))
		return
	}
	start, err1 := strconv.Atoi(cmd[2])
	end, err2 := strconv.Atoi(cmd[3])
	if err1 != nil || err2 != nil {
		s.writeErr(errNotInteger)
		return
	}
	values, err := s.engine.LRange(cmd[1], start, end)
	if err != nil {
		s.writeErr(err)
		return
	}
	writeByteArr(&s.enc, values)
}

func (s *Session) doBLPOP(cmd []string) {
	if len(cmd) != 3 {
		s.writeErr(arityErr("blpop"))
		return
	}
	timeoutSec, err := strconv.ParseFloat(cmd[2], 64)
	if err != nil || timeoutSec < 0 {
		s.writeErr(errNotInteger)
		return
	}

	var value []byte
	var ok bool
	if s.inExec {
		// spec.md §4.F: a blocking command queued inside MULTI must not
		// park at EXEC time; it runs as a single non-blocking attempt.
		value, ok, err = s.engine.BLPopNow(cmd[1])
	} else {
		value, ok, err = s.engine.BLPop(s.ctx, cmd[1], timeoutSec)
	}
	if err != nil {
		s.writeErr(err)
		return
	}
	if !ok {
		s.enc.WriteNullBulk()
		return
	}
	s.enc.WriteArrHeader(2)
	s.enc.WriteBulkStr(cmd[1])
	s.enc.WriteBulkStr(string(value))
}

// --- 4.C Stream engine --------------------------------------------------

func (s *Session) doXADD(cmd []string) {
	if len(cmd) < 5 {
		s.writeErr(arityErr("xadd"))
		return
	}
	fieldVals := cmd[3:]
	if len(fieldVals)%2 != 0 {
		s.writeErr(errSyntax)
		return
	}

	id, err := s.engine.XAdd(cmd[1], cmd[2], append([]string(nil), fieldVals...))
	if err != nil {
		s.writeErr(err)
		return
	}
	s.enc.WriteBulkStr(id.String())
}

func (s *Session) doXRANGE(cmd []string) {
	if len(cmd) != 4 {
		s.writeErr(arityErr("xrange"))
		return
	}
	entries, err := s.engine.XRange(cmd[1], cmd[2], cmd[3])
	if err != nil {
		s.writeErr(err)
		return
	}
	writeEntries(&s.enc, entries)
}

// doXREAD parses "XREAD [BLOCK ms] STREAMS key1..keyN id1..idN". The
// STREAMS keyword is the pivot: everything before it (besides BLOCK) is an
// option, everything after is split evenly between keys and ids.
func (s *Session) doXREAD(cmd []string) {
	args := cmd[1:]
	block := false
	var blockMs int64
	streamsIdx := -1

	i := 0
	for i < len(args) {
		switch {
		case foldEqual(args[i], "block"):
			if i+1 >= len(args) {
				s.writeErr(errSyntax)
				return
			}
			ms, err := strconv.ParseInt(args[i+1], 10, 64)
			if err != nil || ms < 0 {
				s.writeErr(errInvalidBlockTime)
				return
			}
			block = true
			blockMs = ms
			i += 2
		case foldEqual(args[i], "streams"):
			streamsIdx = i
			i++
		default:
			s.writeErr(errSyntax)
			return
		}
		if streamsIdx != -1 {
			break
		}
	}
	if streamsIdx == -1 {
		s.writeErr(errSyntax)
		return
	}

	rest := args[streamsIdx+1:]
	if len(rest) == 0 || len(rest)%2 != 0 {
		s.writeErr(errSyntax)
		return
	}
	n := len(rest) / 2
	keys := rest[:n]
	ids := rest[n:]

	if s.inExec {
		// spec.md §4.F: never park while inside EXEC, even if BLOCK was
		// queued; re-scan once and reply with whatever matches now.
		block = false
	}

	results, ok, err := s.engine.XRead(s.ctx, keys, ids, block, blockMs)
	if err != nil {
		s.writeErr(err)
		return
	}
	if !ok {
		s.enc.WriteNullBulk()
		return
	}
	s.writeXReadReply(results)
}

func (s *Session) writeXReadReply(results []XReadStreamResult) {
	s.enc.WriteArrHeader(len(results))
	for _, r := range results {
		s.enc.WriteArrHeader(2)
		s.enc.WriteBulkStr(r.Key)
		writeEntries(&s.enc, r.Entries)
	}
}

// --- 4.F Transaction control ---------------------------------------------

func (s *Session) doMULTI(cmd []string) {
	s.tx.begin()
	s.enc.WriteSimpleStr("OK")
}

func (s *Session) doDISCARD(cmd []string) {
	if !s.tx.inMulti {
		s.writeErr(errDiscardWithoutMulti)
		return
	}
	s.tx.discard()
	s.enc.WriteSimpleStr("OK")
}

func (s *Session) doEXEC(cmd []string) {
	if !s.tx.inMulti {
		s.writeErr(errExecWithoutMulti)
		return
	}
	queued := s.tx.drain()

	s.inExec = true
	s.enc.WriteArrHeader(len(queued))
	for _, queuedCmd := range queued {
		s.execute(queuedCmd)
	}
	s.inExec = false
}

func strsToBytes(strs []string) [][]byte {
	out := make([][]byte, len(strs))
	for i, v := range strs {
		out[i] = []byte(v)
	}
	return out
}
