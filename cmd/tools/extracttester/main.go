package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hamzasiddiq/dost-ai/backend/internal/extract"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	path := flag.String("file", "", "待抽取的文档路径 (txt/pdf/docx/xlsx)")
	out := flag.String("out", "", "输出文本文件路径，留空则打印到标准输出")
	flag.Parse()

	if *path == "" {
		flag.Usage()
		log.Fatal("请通过 -file 指定输入文档")
	}

	f, err := os.Open(*path)
	if err != nil {
		log.Fatalf("打开文件失败: %v", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		log.Fatalf("读取文件信息失败: %v", err)
	}

	text, err := extract.Extract(info.Name(), f, info.Size(), func(percent int) {
		if percent%10 == 0 {
			log.Printf("读取进度 %d%%", percent)
		}
	})
	if err != nil {
		log.Fatalf("抽取失败: %v", err)
	}

	log.Printf("抽取完成，共 %d 字符", len(text))

	if *out == "" {
		fmt.Println(text)
		return
	}
	if err := os.WriteFile(*out, []byte(text), 0o644); err != nil {
		log.Fatalf("写出失败: %v", err)
	}
	log.Printf("已写出到 %s", *out)
}
