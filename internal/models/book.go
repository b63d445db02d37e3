package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const (
	UploadMethodAWS   = "aws"
	UploadMethodLocal = "local"

	EpubMimeType = "application/epub+zip"
)

// Price amounts are minor currency units.
type Price struct {
	MRP  int64 `bson:"mrp" json:"mrp"`
	Sale int64 `bson:"sale" json:"sale"`
}

// Display renders both amounts with two decimals.
func (p Price) Display() map[string]string {
	return map[string]string{
		"mrp":  fmt.Sprintf("%.2f", float64(p.MRP)/100),
		"sale": fmt.Sprintf("%.2f", float64(p.Sale)/100),
	}
}

type FileInfo struct {
	ID   string `bson:"id" json:"id"`
	Size string `bson:"size" json:"size"`
}

type Book struct {
	ID              bson.ObjectID `bson:"_id,omitempty"`
	Author          bson.ObjectID `bson:"author"`
	Title           string        `bson:"title"`
	Slug            string        `bson:"slug"`
	Description     string        `bson:"description"`
	Language        string        `bson:"language"`
	Genre           string        `bson:"genre"`
	PublicationName string        `bson:"publicationName"`
	PublishedAt     time.Time     `bson:"publishedAt"`
	Price           Price         `bson:"price"`
	FileInfo        FileInfo      `bson:"fileInfo"`
	UploadMethod    string        `bson:"uploadMethod"`
	Cover           *File         `bson:"cover,omitempty"`
	AverageRating   *float64      `bson:"averageRating,omitempty"`
	CopySold        int64         `bson:"copySold"`
	CreatedAt       time.Time     `bson:"createdAt"`
	UpdatedAt       time.Time     `bson:"updatedAt"`
}

// Rating renders the average with one decimal, empty when nobody rated yet.
func (b *Book) Rating() string {
	if b.AverageRating == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *b.AverageRating)
}

func (b *Book) CoverURL() string {
	if b.Cover == nil {
		return ""
	}
	return b.Cover.URL
}
