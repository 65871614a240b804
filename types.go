package mcping

import "fmt"

// JavaVersion is the "version" object of a Java status document.
type JavaVersion struct {
	Name     string
	Protocol int64
}

// JavaPlayerSample is one entry of the optional online-player sample.
type JavaPlayerSample struct {
	Name string
	ID   string
}

// JavaPlayers is the "players" object of a Java status document.
type JavaPlayers struct {
	Max    int64
	Online int64
	Sample []JavaPlayerSample
}

// JavaResponse is the decoded Java Edition status document.
type JavaResponse struct {
	Version     JavaVersion
	Players     JavaPlayers
	Description Chat
	Favicon     *string
}

func (r JavaResponse) String() string {
	return fmt.Sprintf(
		"%s (protocol %d) - %q - players %d/%d",
		r.Version.Name, r.Version.Protocol, r.Description.Text(), r.Players.Online, r.Players.Max,
	)
}

// BedrockResponse is the decoded Bedrock Edition Unconnected Pong
// payload. Fields past MOTD1 are optional: they are absent when the
// server omitted a trailing field, or when a numeric field failed to
// parse.
type BedrockResponse struct {
	Edition         Edition
	MOTD1           string
	ProtocolVersion *int64
	VersionName     string
	PlayersOnline   *int64
	PlayersMax      *int64
	ServerID        *int64
	MOTD2           *string
	GameMode        *string
	GameModeID      *int64
	PortV4          *uint16
	PortV6          *uint16
}

func (r BedrockResponse) String() string {
	return fmt.Sprintf("%s %q (%s) - players %s/%s",
		r.Edition, r.MOTD1, r.VersionName, optionalInt64String(r.PlayersOnline), optionalInt64String(r.PlayersMax))
}

func optionalInt64String(v *int64) string {
	if v == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *v)
}
