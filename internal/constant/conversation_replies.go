package constant

// Fixed WhatsApp replies, one per conversation prompt.
const (
	ReplyMenu = "🙏 नमस्ते! किसान सलाह सेवा में आपका स्वागत है।\n\nकृपया चुनें:\n1️⃣ मौसम जानकारी\n2️⃣ फसल सलाह"

	ReplyAskLocation = "📍 मौसम जानने के लिए अपनी लोकेशन भेजें या अपने ज़िले का नाम लिखें।"
	ReplyAskDistrict = "📍 कृपया अपने ज़िले का नाम लिखें।"
	ReplyAskCrop     = "🌾 आप किस फसल के बारे में सलाह चाहते हैं? फसल का नाम लिखें (जैसे गेहूं, धान, अमरूद)।"
	ReplyAskCategory = "📋 आपकी समस्या किस बारे में है?\n1️⃣ कीट/रोग\n2️⃣ खाद/पोषण\n3️⃣ सिंचाई/सामान्य\n4️⃣ किस्में/बुवाई"

	ReplyAskQueries = "✍️ अपनी समस्या लिखें, वॉइस नोट भेजें या फसल की फोटो भेजें। एक से अधिक संदेश भेज सकते हैं।\nसब भेजने के बाद *हो गया* लिखें।"
	ReplyQueryAdded = "✅ मिल गया। और कुछ हो तो भेजें, नहीं तो *हो गया* लिखें।"
	ReplyQueryLimit = "⚠️ एक बार में अधिकतम %d संदेश भेजे जा सकते हैं। अब *हो गया* लिखें।"

	ReplyNotUnderstood   = "🤔 माफ़ कीजिए, हम समझ नहीं पाए।"
	ReplyStillProcessing = "⏳ आपकी पिछली समस्या पर सलाह तैयार हो रही है, कृपया थोड़ा इंतज़ार करें। नई शुरुआत के लिए *मेनू* लिखें।"
	ReplyWorking         = "⏳ धन्यवाद! आपकी समस्या पर सलाह तैयार की जा रही है। इसमें एक-दो मिनट लग सकते हैं।"
	ReplyTryAgain        = "🙏 माफ़ कीजिए, अभी सलाह तैयार करने में दिक्कत आ रही है। कृपया थोड़ी देर बाद फिर से *हो गया* लिखें।"
	ReplyBusy            = "⏳ आपका पिछला संदेश अभी प्रोसेस हो रहा है, कृपया कुछ सेकंड बाद भेजें।"

	ReplyDifferentCrop = "🌾 आपका सवाल *%s* के बारे में लगता है, जबकि चुनी गई फसल *%s* है। सही फसल चुनने के लिए *मेनू* लिखें।"
	ReplyContact       = "📞 हमारे कृषि विशेषज्ञ से बात करने के लिए संपर्क करें:\n%s\n\nआपका अनुरोध विशेषज्ञ को भेज दिया गया है।"

	ReplyWeatherUnavailable = "🌦️ माफ़ कीजिए, अभी मौसम जानकारी उपलब्ध नहीं है। कृपया बाद में प्रयास करें।"
	ReplyMissingTopics      = "⚠️ इन विषयों पर हमारे पास " + MissingEvidencePhrase + ":\n%s\nकृपया नजदीकी कृषि विज्ञान केंद्र (KVK) से संपर्क करें।"
	ReplyFollowUp           = "\n\nनई सलाह के लिए *मेनू* लिखें।"
)
