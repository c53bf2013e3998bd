package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&AdminAudit{},
	// Accounts
	&User{},
	// Catalog
	&Product{},
	&ProductVariant{},
	&PendingProduct{},
	&Keyword{},
	// Cart & Orders
	&CartItem{},
	&Order{},
	&OrderItem{},
	&OrderStatusHistory{},
	&LogisticsCarrier{},
	// Advisory content
	&Crop{},
	&CropGuide{},
	&CropPest{},
	&CropDisease{},
	&PestImage{},
	&DiseaseImage{},
	// Messaging
	&Conversation{},
	&Message{},
	&ConversationSeen{},
	// Notifications
	&Notification{},
}
