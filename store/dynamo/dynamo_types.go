package dynamo

import (
	"github.com/wallyhq/wally/models"
)

// Single-table rows. Walls carry an EntityType attribute so the listing
// GSI can find them; everything else is reachable by id.

type dynamoWall struct {
	PK         string   `dynamodbav:"PK"`
	SK         string   `dynamodbav:"SK"`
	EntityType string   `dynamodbav:"EntityType"`
	Name       string   `dynamodbav:"Name"`
	Notes      []string `dynamodbav:"Notes,stringset,omitempty"`
	Lines      []string `dynamodbav:"Lines,stringset,omitempty"`
	Images     []string `dynamodbav:"Images,stringset,omitempty"`
}

func wallToDynamo(w models.Wall) dynamoWall {
	return dynamoWall{
		PK:         "WALL#" + w.Name,
		SK:         "META",
		EntityType: "WALL",
		Name:       w.Name,
		Notes:      w.Notes,
		Lines:      w.Lines,
		Images:     w.Images,
	}
}

func wallFromDynamo(dw dynamoWall) models.Wall {
	return models.Wall{
		Name:   dw.Name,
		Notes:  dw.Notes,
		Lines:  dw.Lines,
		Images: dw.Images,
	}
}

type dynamoNote struct {
	PK     string  `dynamodbav:"PK"`
	SK     string  `dynamodbav:"SK"`
	ZIndex int     `dynamodbav:"ZIndex"`
	X      float64 `dynamodbav:"X"`
	Y      float64 `dynamodbav:"Y"`
	Colour string  `dynamodbav:"Colour"`
	Text   string  `dynamodbav:"Text"`
}

func noteToDynamo(n models.Note) dynamoNote {
	return dynamoNote{
		PK:     "NOTE#" + n.Id,
		SK:     "META",
		ZIndex: n.ZIndex,
		X:      n.X,
		Y:      n.Y,
		Colour: n.Colour,
		Text:   n.Text,
	}
}

func noteFromDynamo(dn dynamoNote) models.Note {
	return models.Note{
		Id:     dn.PK[len("NOTE#"):],
		ZIndex: dn.ZIndex,
		X:      dn.X,
		Y:      dn.Y,
		Colour: dn.Colour,
		Text:   dn.Text,
	}
}

type dynamoLine struct {
	PK     string         `dynamodbav:"PK"`
	SK     string         `dynamodbav:"SK"`
	Points []models.Point `dynamodbav:"Points"`
	Colour string         `dynamodbav:"Colour"`
	Width  string         `dynamodbav:"Width"`
}

func lineToDynamo(l models.Line) dynamoLine {
	return dynamoLine{
		PK:     "LINE#" + l.Id,
		SK:     "META",
		Points: l.Points,
		Colour: l.Colour,
		Width:  l.Width,
	}
}

func lineFromDynamo(dl dynamoLine) models.Line {
	return models.Line{
		Id:     dl.PK[len("LINE#"):],
		Points: dl.Points,
		Colour: dl.Colour,
		Width:  dl.Width,
	}
}

type dynamoImage struct {
	PK             string  `dynamodbav:"PK"`
	SK             string  `dynamodbav:"SK"`
	Name           string  `dynamodbav:"Name"`
	ZIndex         int     `dynamodbav:"ZIndex"`
	X              float64 `dynamodbav:"X"`
	Y              float64 `dynamodbav:"Y"`
	OriginalWidth  float64 `dynamodbav:"OriginalWidth"`
	OriginalHeight float64 `dynamodbav:"OriginalHeight"`
	Width          float64 `dynamodbav:"Width"`
	Height         float64 `dynamodbav:"Height"`
}

func imageToDynamo(i models.Image) dynamoImage {
	return dynamoImage{
		PK:             "IMAGE#" + i.Id,
		SK:             "META",
		Name:           i.Name,
		ZIndex:         i.ZIndex,
		X:              i.X,
		Y:              i.Y,
		OriginalWidth:  i.OriginalWidth,
		OriginalHeight: i.OriginalHeight,
		Width:          i.Width,
		Height:         i.Height,
	}
}

func imageFromDynamo(di dynamoImage) models.Image {
	return models.Image{
		Id:             di.PK[len("IMAGE#"):],
		Name:           di.Name,
		ZIndex:         di.ZIndex,
		X:              di.X,
		Y:              di.Y,
		OriginalWidth:  di.OriginalWidth,
		OriginalHeight: di.OriginalHeight,
		Width:          di.Width,
		Height:         di.Height,
	}
}

type dynamoUser struct {
	PK           string `dynamodbav:"PK"`
	SK           string `dynamodbav:"SK"`
	Id           string `dynamodbav:"Id"`
	Colour       string `dynamodbav:"Colour"`
	Name         string `dynamodbav:"Name"`
	UseNightMode bool   `dynamodbav:"UseNightMode"`
	Created      int64  `dynamodbav:"Created"`
	// ExpiresAt drives the table's TTL eviction of idle users.
	ExpiresAt int64 `dynamodbav:"ExpiresAt"`
}

func userToDynamo(clientId string, u models.User) dynamoUser {
	return dynamoUser{
		PK:           "USER#" + clientId,
		SK:           "PROFILE",
		Id:           u.Id,
		Colour:       u.Colour,
		Name:         u.Name,
		UseNightMode: u.UseNightMode,
	}
}

func userFromDynamo(du dynamoUser) models.User {
	return models.User{
		Id:           du.Id,
		Colour:       du.Colour,
		Name:         du.Name,
		UseNightMode: du.UseNightMode,
	}
}

type dynamoBinaryData struct {
	PK   string `dynamodbav:"PK"`
	SK   string `dynamodbav:"SK"`
	Data string `dynamodbav:"Data"`
}

func binaryDataToDynamo(b models.BinaryData) dynamoBinaryData {
	return dynamoBinaryData{
		PK:   "DATA#" + b.Id,
		SK:   "META",
		Data: b.Data,
	}
}

func binaryDataFromDynamo(db dynamoBinaryData) models.BinaryData {
	return models.BinaryData{
		Id:   db.PK[len("DATA#"):],
		Data: db.Data,
	}
}
