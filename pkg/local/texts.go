package local

var (
	TextReplyUnavailable = NewSet(
		"抱歉，我现在无法回复。请稍后再试。",
		In(Eng, "Sorry, I am currently unable to reply. Please try again later."),
	)
	TextServiceError = NewSet(
		"抱歉，AI服务暂时不可用，请稍后再试。(%s)",
		In(Eng, "Sorry, the AI service is temporarily unavailable. Please try again later. (%s)"),
	)

	TextGreetingHomepage = NewSet(
		"你好！我是AI助手，我看到你在首页，有什么可以帮助你的吗？",
		In(Eng, "Hi! I'm the AI assistant. I see you're on the homepage, how can I help?"),
	)
	TextGreetingDocs = NewSet(
		"你好！我是AI助手，我看到你正在阅读文档：%s，有什么可以帮助你的吗？",
		In(Eng, "Hi! I'm the AI assistant. I see you're reading the docs: %s, how can I help?"),
	)
	TextGreetingBlog = NewSet(
		"你好！我是AI助手，我看到你正在阅读博客：%s，有什么可以帮助你的吗？",
		In(Eng, "Hi! I'm the AI assistant. I see you're reading the blog: %s, how can I help?"),
	)
	TextGreetingOther = NewSet(
		"你好！我是AI助手，我看到你%s，有什么可以帮助你的吗？",
		In(Eng, "Hi! I'm the AI assistant. I see you're %s, how can I help?"),
	)

	TextPageHomepage = NewSet("正在浏览首页", In(Eng, "browsing the homepage"))
	TextPageDocs     = NewSet("正在阅读文档: %s", In(Eng, "reading the docs: %s"))
	TextPageBlog     = NewSet("正在阅读博客: %s", In(Eng, "reading the blog: %s"))
	TextPageOther    = NewSet("正在浏览页面: %s", In(Eng, "browsing page: %s"))
)
