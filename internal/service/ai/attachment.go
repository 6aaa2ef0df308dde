package ai

import (
	"encoding/base64"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/hamzasiddiq/dost-ai/backend/internal/model/chat"
)

// attachmentPart 将二进制附件映射为后端可用的内联数据部分。
func attachmentPart(att chat.Attachment) schema.ChatMessagePart {
	uri := DataURI(att.MimeType, att.Data)

	switch {
	case strings.HasPrefix(att.MimeType, "image/"):
		return schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{URL: uri, MIMEType: att.MimeType},
		}
	case strings.HasPrefix(att.MimeType, "audio/"):
		return schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeAudioURL,
			AudioURL: &schema.ChatMessageAudioURL{URL: uri, MIMEType: att.MimeType},
		}
	case strings.HasPrefix(att.MimeType, "video/"):
		return schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeVideoURL,
			VideoURL: &schema.ChatMessageVideoURL{URL: uri, MIMEType: att.MimeType},
		}
	default:
		return schema.ChatMessagePart{
			Type:    schema.ChatMessagePartTypeFileURL,
			FileURL: &schema.ChatMessageFileURL{URL: uri, MIMEType: att.MimeType, Name: att.Name},
		}
	}
}

// DataURI 将二进制负载编码为 data URL。
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
