package amcpprotocol

// Command identifies the AMCP command a response belongs to.
type Command int

const (
	// CmdNone is the idle state and the classification of unknown tokens.
	CmdNone Command = iota

	// Playout
	CmdLoad
	CmdLoadBG
	CmdPlay
	CmdStop
	CmdClear
	CmdCall
	CmdSwap
	CmdAdd
	CmdRemove
	CmdSet
	CmdMixer

	// Templates
	CmdCG

	// Queries
	CmdCLS
	CmdCINF
	CmdTLS
	CmdVersion
	CmdInfo
	CmdInfoSystem
	CmdStatus

	// Stored data
	CmdDataList
	CmdDataRetrieve

	// Thumbnails
	CmdThumbnailList
	CmdThumbnailRetrieve

	CmdError

	// CmdConnectionState marks link up/down notifications. It never
	// appears on the wire.
	CmdConnectionState
)

// wireTokens maps each command to the token the server echoes in the
// response header. Two-word commands are joined by a single space.
var wireTokens = map[Command]string{
	CmdLoad:              "LOAD",
	CmdLoadBG:            "LOADBG",
	CmdPlay:              "PLAY",
	CmdStop:              "STOP",
	CmdClear:             "CLEAR",
	CmdCall:              "CALL",
	CmdSwap:              "SWAP",
	CmdAdd:               "ADD",
	CmdRemove:            "REMOVE",
	CmdSet:               "SET",
	CmdMixer:             "MIXER",
	CmdCG:                "CG",
	CmdCLS:               "CLS",
	CmdCINF:              "CINF",
	CmdTLS:               "TLS",
	CmdVersion:           "VERSION",
	CmdInfo:              "INFO",
	CmdInfoSystem:        "INFO SYSTEM",
	CmdStatus:            "STATUS",
	CmdDataList:          "DATA LIST",
	CmdDataRetrieve:      "DATA RETRIEVE",
	CmdThumbnailList:     "THUMBNAIL LIST",
	CmdThumbnailRetrieve: "THUMBNAIL RETRIEVE",
	CmdError:             "ERROR",
}

var commandsByToken = func() map[string]Command {
	m := make(map[string]Command, len(wireTokens))
	for cmd, token := range wireTokens {
		m[token] = cmd
	}
	return m
}()

// Classify maps a header token (or two tokens joined by one space) to a
// Command. The match is exact and case-sensitive; anything else is CmdNone.
func Classify(token string) Command {
	if cmd, ok := commandsByToken[token]; ok {
		return cmd
	}
	return CmdNone
}

// Commands returns the wire vocabulary in declaration order.
func Commands() []Command {
	cmds := make([]Command, 0, len(wireTokens))
	for c := CmdNone + 1; c < CmdConnectionState; c++ {
		cmds = append(cmds, c)
	}
	return cmds
}

// String returns the wire token of the command.
func (c Command) String() string {
	switch c {
	case CmdNone:
		return "NONE"
	case CmdConnectionState:
		return "CONNECTIONSTATE"
	}
	if token, ok := wireTokens[c]; ok {
		return token
	}
	return "NONE"
}
