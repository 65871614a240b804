package mcping

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Chat is Minecraft's chat component, narrowed to the two shapes this
// library supports: a bare string, or an object carrying a top-level
// "text" field (and, one level deep, an "extra" array of the same two
// shapes - richer formatting is out of scope).
type Chat struct {
	text string
}

// Text returns the flattened text of the chat component.
func (c Chat) Text() string {
	return c.text
}

func (c *Chat) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		c.text = asString
		return nil
	}

	// A bare "extra" entry may itself be a plain string; decode loosely.
	var raw struct {
		Text  string            `json:"text"`
		Extra []json.RawMessage `json:"extra"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(raw.Text)
	for _, item := range raw.Extra {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			b.WriteString(s)
			continue
		}
		var nested struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(item, &nested); err == nil {
			b.WriteString(nested.Text)
		}
	}
	c.text = b.String()
	return nil
}

func (c Chat) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.text)
}

// Edition identifies the server software family reported in a Bedrock
// pong, preserving unknown tokens verbatim.
type Edition struct {
	raw string
}

var (
	// PocketEdition is the "MCPE" token.
	PocketEdition = Edition{raw: "MCPE"}
	// EducationEdition is the "MCEE" token.
	EducationEdition = Edition{raw: "MCEE"}
)

// OtherEdition wraps an edition token this library does not recognize.
func OtherEdition(raw string) Edition {
	return Edition{raw: raw}
}

// String returns the edition token as reported on the wire.
func (e Edition) String() string {
	return e.raw
}

// IsPocket reports whether this is the Pocket/Bedrock edition token.
func (e Edition) IsPocket() bool {
	return strings.EqualFold(e.raw, PocketEdition.raw)
}

// IsEducation reports whether this is the Education Edition token.
func (e Edition) IsEducation() bool {
	return strings.EqualFold(e.raw, EducationEdition.raw)
}

func parseEdition(token string) Edition {
	switch {
	case strings.EqualFold(token, "MCPE"):
		return PocketEdition
	case strings.EqualFold(token, "MCEE"):
		return EducationEdition
	default:
		return OtherEdition(token)
	}
}

// rawJavaStatus is the wire shape of the Java status JSON document. Unknown
// fields are ignored by encoding/json's default behavior.
type rawJavaStatus struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int64  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int64 `json:"max"`
		Online int64 `json:"online"`
		Sample []struct {
			Name string `json:"name"`
			ID   string `json:"id"`
		} `json:"sample"`
	} `json:"players"`
	Description Chat    `json:"description"`
	Favicon     *string `json:"favicon"`
}

// decodeJavaStatus parses the Java status JSON document into a
// JavaResponse per spec §4.5.
func decodeJavaStatus(data []byte) (JavaResponse, error) {
	var raw rawJavaStatus
	if err := json.Unmarshal(data, &raw); err != nil {
		return JavaResponse{}, jsonErrorf(err, "decode status document")
	}

	resp := JavaResponse{
		Version: JavaVersion{
			Name:     raw.Version.Name,
			Protocol: raw.Version.Protocol,
		},
		Players: JavaPlayers{
			Max:    raw.Players.Max,
			Online: raw.Players.Online,
		},
		Description: raw.Description,
		Favicon:     raw.Favicon,
	}
	if len(raw.Players.Sample) > 0 {
		resp.Players.Sample = make([]JavaPlayerSample, 0, len(raw.Players.Sample))
		for _, s := range raw.Players.Sample {
			resp.Players.Sample = append(resp.Players.Sample, JavaPlayerSample{Name: s.Name, ID: s.ID})
		}
	}
	return resp, nil
}

// bedrockFieldOrder names the 12 positional fields of the Unconnected Pong
// payload, per spec §4.4.
var bedrockFieldOrder = []string{
	"edition", "motd1", "protocol_version", "version_name",
	"players_online", "players_max", "server_id", "motd2",
	"game_mode", "game_mode_id", "port_v4", "port_v6",
}

// decodeBedrockPayload parses the semicolon-delimited Unconnected Pong
// payload. edition and motd1 are required; everything after is optional,
// and a numeric field that fails to parse becomes absent without
// rejecting the remaining fields.
func decodeBedrockPayload(payload string) (BedrockResponse, error) {
	fields := strings.Split(payload, ";")
	get := func(i int) (string, bool) {
		if i < len(fields) {
			return fields[i], true
		}
		return "", false
	}

	editionTok, ok := get(0)
	if !ok || editionTok == "" {
		return BedrockResponse{}, invalidPacketf("bedrock payload missing edition field")
	}
	motd1, ok := get(1)
	if !ok {
		return BedrockResponse{}, invalidPacketf("bedrock payload missing motd field")
	}

	resp := BedrockResponse{
		Edition: parseEdition(editionTok),
		MOTD1:   motd1,
	}

	resp.ProtocolVersion = optionalInt64(get(2))
	resp.VersionName, _ = get(3)
	resp.PlayersOnline = optionalInt64(get(4))
	resp.PlayersMax = optionalInt64(get(5))
	resp.ServerID = optionalServerID(get(6))
	resp.MOTD2 = optionalString(get(7))
	resp.GameMode = optionalString(get(8))
	resp.GameModeID = optionalInt64(get(9))
	resp.PortV4 = optionalUint16(get(10))
	resp.PortV6 = optionalUint16(get(11))

	return resp, nil
}

func optionalString(value string, present bool) *string {
	if !present {
		return nil
	}
	return &value
}

func optionalInt64(value string, present bool) *int64 {
	if !present {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func optionalUint16(value string, present bool) *uint16 {
	if !present {
		return nil
	}
	n, err := strconv.ParseUint(value, 10, 16)
	if err != nil {
		return nil
	}
	u := uint16(n)
	return &u
}

// optionalServerID widens the wire value to uint64 before narrowing, so a
// value that overflows int64 is reported absent rather than wrapped
// (Open Question #2, decided in DESIGN.md).
func optionalServerID(value string, present bool) *int64 {
	if !present {
		return nil
	}
	u, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return nil
	}
	if u > (1<<63)-1 {
		return nil
	}
	n := int64(u)
	return &n
}
