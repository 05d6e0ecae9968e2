package anki

import (
	"archive/zip"
	"crypto/sha1"
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"codeberg.org/snonux/wordtale/internal/story"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// fieldSeparator joins note fields inside the notes.flds column
const fieldSeparator = "\x1f"

var noteFields = []string{"Sentence", "Translation", "Image", "Audio", "Words"}

// APKGGenerator creates Anki package files (.apkg)
type APKGGenerator struct {
	deckName string
	deckID   int64
	modelID  int64
	cards    []Card
	media    map[string]string // source path -> media name in the deck
	order    []string          // media names in insertion order
}

// NewAPKGGenerator creates a new APKG generator
func NewAPKGGenerator(deckName string) *APKGGenerator {
	now := time.Now().UnixMilli()
	return &APKGGenerator{
		deckName: deckName,
		deckID:   now,
		modelID:  now + 1,
		media:    make(map[string]string),
	}
}

// AddCard adds a card to the generator
func (g *APKGGenerator) AddCard(card Card) {
	g.cards = append(g.cards, card)
}

// GenerateAPKG writes the collection database and all referenced media into
// a zip archive at outputPath
func (g *APKGGenerator) GenerateAPKG(outputPath string) error {
	if len(g.cards) == 0 {
		return fmt.Errorf("no cards to export")
	}

	tempDir, err := os.MkdirTemp("", "wordtale_apkg_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	g.collectMedia()

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := g.createDatabase(dbPath); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := g.writePackage(dbPath, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}
	return nil
}

// collectMedia registers every image and audio file that exists on disk
func (g *APKGGenerator) collectMedia() {
	add := func(runID, path string) {
		if path == "" {
			return
		}
		if _, seen := g.media[path]; seen {
			return
		}
		if _, err := os.Stat(path); err != nil {
			return
		}
		name := mediaName(runID, path)
		g.media[path] = name
		g.order = append(g.order, path)
	}
	for _, card := range g.cards {
		add(card.RunID, card.ImageFile)
		add(card.RunID, card.AudioFile)
	}
}

func (g *APKGGenerator) createDatabase(dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	if err := g.insertCollection(tx); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	if err := g.insertNotes(tx); err != nil {
		return fmt.Errorf("failed to insert notes: %w", err)
	}
	return tx.Commit()
}

var schema = []string{
	`CREATE TABLE col (id integer PRIMARY KEY, crt integer NOT NULL, mod integer NOT NULL,
		scm integer NOT NULL, ver integer NOT NULL, dty integer NOT NULL, usn integer NOT NULL,
		ls integer NOT NULL, conf text NOT NULL, models text NOT NULL, decks text NOT NULL,
		dconf text NOT NULL, tags text NOT NULL)`,
	`CREATE TABLE notes (id integer PRIMARY KEY, guid text NOT NULL, mid integer NOT NULL,
		mod integer NOT NULL, usn integer NOT NULL, tags text NOT NULL, flds text NOT NULL,
		sfld text NOT NULL, csum integer NOT NULL, flags integer NOT NULL, data text NOT NULL)`,
	`CREATE TABLE cards (id integer PRIMARY KEY, nid integer NOT NULL, did integer NOT NULL,
		ord integer NOT NULL, mod integer NOT NULL, usn integer NOT NULL, type integer NOT NULL,
		queue integer NOT NULL, due integer NOT NULL, ivl integer NOT NULL, factor integer NOT NULL,
		reps integer NOT NULL, lapses integer NOT NULL, left integer NOT NULL, odue integer NOT NULL,
		odid integer NOT NULL, flags integer NOT NULL, data text NOT NULL)`,
	`CREATE TABLE revlog (id integer PRIMARY KEY, cid integer NOT NULL, usn integer NOT NULL,
		ease integer NOT NULL, ivl integer NOT NULL, lastIvl integer NOT NULL,
		factor integer NOT NULL, time integer NOT NULL, type integer NOT NULL)`,
	`CREATE TABLE graves (usn integer NOT NULL, oid integer NOT NULL, type integer NOT NULL)`,
	`CREATE INDEX ix_notes_csum ON notes (csum)`,
	`CREATE INDEX ix_cards_nid ON cards (nid)`,
	`CREATE INDEX ix_cards_sched ON cards (did, queue, due)`,
	`CREATE INDEX ix_revlog_cid ON revlog (cid)`,
}

type deck struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Desc      string `json:"desc"`
	Mod       int64  `json:"mod"`
	Conf      int    `json:"conf"`
	Dyn       int    `json:"dyn"`
	Usn       int    `json:"usn"`
	NewToday  []int  `json:"newToday"`
	RevToday  []int  `json:"revToday"`
	LrnToday  []int  `json:"lrnToday"`
	TimeToday []int  `json:"timeToday"`
	Collapsed bool   `json:"collapsed"`
	ExtendNew int    `json:"extendNew"`
	ExtendRev int    `json:"extendRev"`
}

func newDeck(id int64, name, desc string, now int64) deck {
	zero := []int{0, 0}
	return deck{
		ID: id, Name: name, Desc: desc, Mod: now, Conf: 1,
		NewToday: zero, RevToday: zero, LrnToday: zero, TimeToday: zero,
		ExtendNew: 10, ExtendRev: 50,
	}
}

type noteField struct {
	Name  string   `json:"name"`
	Ord   int      `json:"ord"`
	Font  string   `json:"font"`
	Size  int      `json:"size"`
	Media []string `json:"media"`
}

type template struct {
	Name  string `json:"name"`
	Ord   int    `json:"ord"`
	Qfmt  string `json:"qfmt"`
	Afmt  string `json:"afmt"`
	Bqfmt string `json:"bqfmt"`
	Bafmt string `json:"bafmt"`
}

type noteType struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Type      int             `json:"type"`
	Mod       int64           `json:"mod"`
	Usn       int             `json:"usn"`
	Sortf     int             `json:"sortf"`
	Did       int64           `json:"did"`
	Req       [][]interface{} `json:"req"`
	Flds      []noteField     `json:"flds"`
	Tmpls     []template      `json:"tmpls"`
	CSS       string          `json:"css"`
	LatexPre  string          `json:"latexPre"`
	LatexPost string          `json:"latexPost"`
	Tags      []string        `json:"tags"`
	Vers      []int           `json:"vers"`
}

func (g *APKGGenerator) noteType(now int64) noteType {
	flds := make([]noteField, len(noteFields))
	for i, name := range noteFields {
		flds[i] = noteField{Name: name, Ord: i, Font: "Arial", Size: 20, Media: []string{}}
	}
	return noteType{
		ID:    g.modelID,
		Name:  "Story sentence (wordtale)",
		Mod:   now,
		Usn:   -1,
		Did:   g.deckID,
		Req:   [][]interface{}{{0, "all", []int{0}}},
		Flds:  flds,
		Tmpls: []template{{Name: "Sentence", Qfmt: frontTemplate, Afmt: backTemplate}},
		CSS:   cardCSS,
		LatexPre: `\documentclass[12pt]{article}
\special{papersize=3in,5in}
\usepackage[utf8]{inputenc}
\pagestyle{empty}
\begin{document}`,
		LatexPost: `\end{document}`,
		Tags:      []string{},
		Vers:      []int{},
	}
}

func (g *APKGGenerator) insertCollection(tx *sql.Tx) error {
	now := time.Now().Unix()

	decks := map[string]deck{
		"1": newDeck(1, "Default", "", now),
		strconv.FormatInt(g.deckID, 10): newDeck(g.deckID, g.deckName,
			"Surreal vocabulary stories created by wordtale", now),
	}
	models := map[string]noteType{strconv.FormatInt(g.modelID, 10): g.noteType(now)}
	conf := map[string]interface{}{
		"nextPos":     1,
		"activeDecks": []int64{1},
		"sortType":    "noteFld",
		"addToCur":    true,
		"curDeck":     1,
		"schedVer":    1,
		"curModel":    strconv.FormatInt(g.modelID, 10),
	}
	dconf := map[string]interface{}{
		"1": map[string]interface{}{
			"id": 1, "name": "Default", "mod": now, "maxTaken": 60, "autoplay": true, "replayq": true,
			"new":   map[string]interface{}{"delays": []int{1, 10}, "ints": []int{1, 4, 7}, "initialFactor": 2500, "perDay": 20, "order": 1},
			"lapse": map[string]interface{}{"delays": []int{10}, "mult": 0, "minInt": 1, "leechFails": 8, "leechAction": 0},
			"rev":   map[string]interface{}{"perDay": 100, "ease4": 1.3, "fuzz": 0.05, "maxIvl": 36500, "ivlFct": 1, "minSpace": 1},
		},
	}

	values := make([]string, 0, 4)
	for _, v := range []interface{}{conf, models, decks, dconf} {
		data, err := json.Marshal(v)
		if err != nil {
			return err
		}
		values = append(values, string(data))
	}

	_, err := tx.Exec(`INSERT INTO col VALUES (1, ?, ?, ?, 11, 0, 0, 0, ?, ?, ?, ?, '{}')`,
		now, now*1000, now*1000, values[0], values[1], values[2], values[3])
	return err
}

func (g *APKGGenerator) insertNotes(tx *sql.Tx) error {
	now := time.Now()
	base := now.UnixMilli()

	for i, card := range g.cards {
		fields := []string{
			story.Highlight(card.Sentence, card.Words),
			card.Translation,
			imageField(g.media[card.ImageFile]),
			audioField(g.media[card.AudioFile]),
			strings.Join(card.Words, " "),
		}
		noteID := base + int64(i)*2
		cardID := noteID + 1

		_, err := tx.Exec(`INSERT INTO notes VALUES (?, ?, ?, ?, -1, ?, ?, ?, ?, 0, '')`,
			noteID, uuid.New().String(), g.modelID, now.Unix(),
			" wordtale "+card.RunID+" ", strings.Join(fields, fieldSeparator),
			card.Sentence, checksum(card.Sentence))
		if err != nil {
			return err
		}

		_, err = tx.Exec(`INSERT INTO cards VALUES (?, ?, ?, 0, ?, -1, 0, 0, ?, 0, 0, 0, 0, 0, 0, 0, 0, '')`,
			cardID, noteID, g.deckID, now.Unix(), i+1)
		if err != nil {
			return err
		}
	}
	return nil
}

// checksum is the first 8 hex digits of the sort field's SHA1 as an integer
func checksum(field string) int64 {
	sum := sha1.Sum([]byte(field))
	return int64(binary.BigEndian.Uint32(sum[:4]))
}

// writePackage zips the database, the numbered media files and the media
// index into outputPath
func (g *APKGGenerator) writePackage(dbPath, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)

	if err := addZipFile(zw, "collection.anki2", dbPath); err != nil {
		return err
	}

	index := make(map[string]string, len(g.order))
	for i, src := range g.order {
		key := strconv.Itoa(i)
		if err := addZipFile(zw, key, src); err != nil {
			return fmt.Errorf("failed to add media %s: %w", src, err)
		}
		index[key] = g.media[src]
	}

	data, err := json.Marshal(index)
	if err != nil {
		return err
	}
	w, err := zw.Create("media")
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return err
	}

	return zw.Close()
}

func addZipFile(zw *zip.Writer, name, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}

const frontTemplate = `<div class="front">
{{#Image}}<div class="image-container">{{Image}}</div>{{/Image}}
<div class="sentence">{{Sentence}}</div>
</div>`

const backTemplate = `{{FrontSide}}
<hr id="answer">
<div class="back">
<div class="translation">{{Translation}}</div>
{{#Audio}}<div class="audio">{{Audio}}</div>{{/Audio}}
{{#Words}}<div class="words">{{Words}}</div>{{/Words}}
</div>`

const cardCSS = `.card {
  font-family: Arial, sans-serif;
  font-size: 20px;
  text-align: center;
  color: #333;
  background-color: white;
}
.image-container img {
  max-width: 100%;
  height: auto;
  border-radius: 8px;
}
.sentence b { color: #c0392b; }
.translation {
  font-size: 24px;
  color: #2c3e50;
  margin: 20px 0;
}
.words {
  font-size: 16px;
  color: #7f8c8d;
  font-style: italic;
}`
