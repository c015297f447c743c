package safety

import "fmt"

// ConsultNote replaces a removed chemical recommendation.
func ConsultNote(crop string) string {
	return fmt.Sprintf("⚠️ %s के लिए सुझाया गया एक रसायन प्रतिबंधित है, इसलिए उसे हटा दिया गया है। स्वीकृत विकल्पों के लिए अपने स्थानीय कृषि अधिकारी या कृषि विज्ञान केंद्र (KVK) से सलाह लें।", crop)
}

// GenericConsultResponse is delivered when nothing safe is left of an answer.
func GenericConsultResponse(crop string) string {
	return fmt.Sprintf("🙏 %s के लिए इस समस्या पर हम अभी सुरक्षित सलाह नहीं दे पा रहे हैं। कृपया अपने स्थानीय कृषि अधिकारी, कृषि विज्ञान केंद्र (KVK) या किसान कॉल सेंटर (1800-180-1551) से आधिकारिक मार्गदर्शन लें।", crop)
}
