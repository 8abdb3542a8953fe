package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/disintegration/imaging"

	"imgtext/pkg/ocr"
)

// Shows how an image is normalized before it is handed to tesseract.
func main() {
	in := flag.String("file", "", "image file")
	out := flag.String("out", "/tmp/imgtext-normalized.png", "where to save the normalized image")
	flag.Parse()
	if *in == "" {
		log.Fatalf("-file required")
	}
	img, err := ocr.LoadImage(*in)
	if err != nil {
		log.Fatalf("open: %v", err)
	}
	rgb := ocr.Normalize(img)
	if err := imaging.Save(rgb, *out); err != nil {
		log.Fatalf("save: %v", err)
	}
	b := img.Bounds()
	fmt.Printf("source mode=%s size=%dx%d -> normalized mode=%s saved=%s\n",
		ocr.ColorMode(img), b.Dx(), b.Dy(), ocr.ColorMode(rgb), *out)
}
