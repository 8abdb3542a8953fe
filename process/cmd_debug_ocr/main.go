package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"imgtext/pkg/ocr"
	"imgtext/pkg/ocr/libtess"
)

func main() {
	f := flag.String("file", "", "image file to OCR")
	lang := flag.String("lang", ocr.DefaultLanguage, "tesseract language(s)")
	config := flag.String("config", "", "tesseract config")
	engineName := flag.String("engine", ocr.EngineTesseract, "tesseract or gosseract")
	cmd := flag.String("tesseract-cmd", os.Getenv("IMGTEXT_TESSERACT_CMD"), "tesseract executable")
	flag.Parse()
	if *f == "" {
		log.Fatalf("-file required")
	}

	var engine ocr.Engine
	switch *engineName {
	case ocr.EngineTesseract:
		cli := ocr.NewCLIEngine(*cmd)
		v, err := cli.Version(context.Background())
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Printf("engine=%s version=%q\n", cli.Name(), v)
		engine = cli
	case ocr.EngineGosseract:
		lib := libtess.New()
		fmt.Printf("engine=%s version=%q\n", lib.Name(), lib.Version())
		engine = lib
	default:
		log.Fatalf("%v: %q", ocr.ErrUnknownEngine, *engineName)
	}

	o := ocr.NewExtractor(engine, nil).Extract(context.Background(), *f, *lang, *config)
	if !o.OK() {
		log.Fatalf("ocr error: %v", o.Err)
	}
	fmt.Printf("chars=%d text=%q\n", len(o.Text), o.Text)
}
