package interpretation

// Platform 表示消息来源平台的封闭枚举。
type Platform string

const (
	PlatformIMessage  Platform = "imessage"
	PlatformWhatsApp  Platform = "whatsapp"
	PlatformInstagram Platform = "instagram"
	PlatformSnapchat  Platform = "snapchat"
	PlatformDiscord   Platform = "discord"
	PlatformSlack     Platform = "slack"
	PlatformWeChat    Platform = "wechat"
	PlatformOther     Platform = "other"
)

// Platforms 返回全部合法的平台取值。
func Platforms() []Platform {
	return []Platform{
		PlatformIMessage, PlatformWhatsApp, PlatformInstagram, PlatformSnapchat,
		PlatformDiscord, PlatformSlack, PlatformWeChat, PlatformOther,
	}
}

// Valid 判断平台取值是否在封闭集合内。
func (p Platform) Valid() bool {
	for _, v := range Platforms() {
		if p == v {
			return true
		}
	}
	return false
}

// RelationshipContext 表示消息双方的关系语境。
type RelationshipContext string

const (
	ContextRomantic     RelationshipContext = "romantic"
	ContextFriend       RelationshipContext = "friend"
	ContextFamily       RelationshipContext = "family"
	ContextCoworker     RelationshipContext = "coworker"
	ContextAcquaintance RelationshipContext = "acquaintance"
	ContextStranger     RelationshipContext = "stranger"
)

// Contexts 返回全部合法的关系语境取值。
func Contexts() []RelationshipContext {
	return []RelationshipContext{
		ContextRomantic, ContextFriend, ContextFamily,
		ContextCoworker, ContextAcquaintance, ContextStranger,
	}
}

// Valid 判断关系语境取值是否在封闭集合内。
func (c RelationshipContext) Valid() bool {
	for _, v := range Contexts() {
		if c == v {
			return true
		}
	}
	return false
}

// Request 是通过校验后的解读请求，提交后不可变。
type Request struct {
	Message  string              `json:"message"`
	Platform Platform            `json:"platform"`
	Context  RelationshipContext `json:"context"`
}
