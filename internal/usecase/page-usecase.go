package usecase

import (
	"github.com/iamvkosarev/docs-chat-assistant/internal/model"
	"github.com/iamvkosarev/docs-chat-assistant/pkg/local"
	"strings"
)

const (
	docsPrefix = "/docs/"
	blogPrefix = "/blog/"
)

// DescribePage classifies a site pathname the way the chat widget does.
func DescribePage(pathname string, language local.Language) model.PageInfo {
	switch {
	case pathname == "/":
		return model.PageInfo{
			Type:        model.PageTypeHomepage,
			Path:        pathname,
			Description: local.TextPageHomepage.Text(language),
		}
	case strings.HasPrefix(pathname, docsPrefix):
		docPath := strings.TrimSuffix(strings.TrimPrefix(pathname, docsPrefix), "/")
		return model.PageInfo{
			Type:        model.PageTypeDocs,
			Path:        pathname,
			DocPath:     docPath,
			Description: local.TextPageDocs.Format(language, docPath),
		}
	case strings.HasPrefix(pathname, blogPrefix):
		blogPath := strings.TrimSuffix(strings.TrimPrefix(pathname, blogPrefix), "/")
		return model.PageInfo{
			Type:        model.PageTypeBlog,
			Path:        pathname,
			BlogPath:    blogPath,
			Description: local.TextPageBlog.Format(language, blogPath),
		}
	default:
		return model.PageInfo{
			Type:        model.PageTypeOther,
			Path:        pathname,
			Description: local.TextPageOther.Format(language, pathname),
		}
	}
}

func Greeting(page model.PageInfo, language local.Language) string {
	switch page.Type {
	case model.PageTypeHomepage:
		return local.TextGreetingHomepage.Text(language)
	case model.PageTypeDocs:
		return local.TextGreetingDocs.Format(language, page.DocPath)
	case model.PageTypeBlog:
		return local.TextGreetingBlog.Format(language, page.BlogPath)
	default:
		return local.TextGreetingOther.Format(language, page.Description)
	}
}
